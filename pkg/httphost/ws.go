package httphost

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	rerrors "github.com/vango-dev/localeroute/internal/errors"
	"github.com/vango-dev/localeroute/pkg/router"
)

// Soft navigation message types.
const (
	MessageNavigate  = "navigate"
	MessageTranslate = "translate"
	MessageView      = "view"
	MessageRedirect  = "redirect"
	MessageLink      = "link"
	MessageError     = "error"
)

// ClientMessage is sent by the browser over /ws.
type ClientMessage struct {
	Type   string            `json:"type"`
	Path   string            `json:"path"`
	From   string            `json:"from,omitempty"`
	To     string            `json:"to,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// ServerMessage is the reply to a ClientMessage.
type ServerMessage struct {
	Type    string            `json:"type"`
	Lang    string            `json:"lang,omitempty"`
	Route   string            `json:"route,omitempty"`
	View    string            `json:"view,omitempty"`
	Props   map[string]any    `json:"props,omitempty"`
	Params  map[string]string `json:"params,omitempty"`
	HTML    string            `json:"html,omitempty"`
	To      string            `json:"to,omitempty"`
	Path    string            `json:"path,omitempty"`
	Title   string            `json:"title,omitempty"`
	Message string            `json:"message,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.recordWSError("upgrade")
		return
	}
	defer conn.Close()

	if s.metrics != nil {
		s.metrics.RecordWebSocketConnect()
		defer s.metrics.RecordWebSocketDisconnect()
	}
	authorized := s.authorized(r)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.recordWSError("read")
				s.logger.Debug("websocket read failed", "error", err)
			}
			return
		}

		var msg ClientMessage
		var reply ServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.recordWSError("decode")
			reply = ServerMessage{Type: MessageError, Message: "malformed message"}
		} else {
			reply = s.handleMessage(r, msg, authorized)
		}

		if err := conn.WriteJSON(reply); err != nil {
			s.recordWSError("write")
			return
		}
	}
}

func (s *Server) handleMessage(r *http.Request, msg ClientMessage, authorized bool) ServerMessage {
	rt := s.Router()

	switch msg.Type {
	case MessageNavigate:
		return s.navigate(r, rt, msg.Path, authorized)

	case MessageTranslate:
		if msg.To == "" || !rt.Supports(msg.To) {
			return ServerMessage{Type: MessageError, Message: "unsupported language"}
		}
		from, uri := msg.From, msg.Path
		if lang, rest, ok := router.SplitLang(msg.Path); ok {
			from, uri = lang, rest
		}
		if from == "" {
			from = rt.Config().DefaultLang
		}
		return ServerMessage{Type: MessageLink, Path: rt.Translate(uri, from, msg.To, msg.Params)}

	default:
		s.recordWSError("unknown_type")
		return ServerMessage{Type: MessageError, Message: "unknown message type " + msg.Type}
	}
}

// navigate resolves path without side effects and describes the outcome.
func (s *Server) navigate(r *http.Request, rt *Router, path string, authorized bool) ServerMessage {
	canon, err := router.CanonicalizePath(path)
	if err != nil {
		return ServerMessage{Type: MessageError, Message: err.Error()}
	}

	doc := &document{}
	if rt.GetViews(doc) == nil {
		return ServerMessage{Type: MessageError, Title: doc.errTitle, Message: doc.errMsg}
	}

	res := rt.Resolve(r.Context(), canon.Path)
	switch res.Outcome {
	case router.RedirectLanguage, router.RedirectNotFound:
		return ServerMessage{Type: MessageRedirect, To: res.Redirect}
	case router.Fatal:
		var e *rerrors.Error
		if errors.As(res.Err, &e) {
			return ServerMessage{Type: MessageError, Title: e.Message, Message: e.PanelMessage()}
		}
		return ServerMessage{Type: MessageError, Message: res.Err.Error()}
	case router.Failed:
		return ServerMessage{Type: MessageError, Message: "view could not be loaded"}
	}

	if res.View.Auth && !authorized {
		return ServerMessage{Type: MessageError, Message: http.StatusText(http.StatusUnauthorized)}
	}

	uri := strings.Trim(strings.TrimPrefix(canon.Path, "/"+res.Lang), "/")
	data := PageData{
		Lang:       res.Lang,
		Route:      res.Route.FullPath,
		Props:      res.View.Props,
		Params:     res.View.Params,
		Alternates: rt.Alternates(uri, res.Lang),
	}
	var body bytes.Buffer
	if err := res.View.Module.Render(&body, data); err != nil {
		return ServerMessage{Type: MessageError, Message: "render failed"}
	}

	return ServerMessage{
		Type:   MessageView,
		Lang:   res.Lang,
		Route:  res.Route.FullPath,
		View:   res.Route.Node.View,
		Props:  res.View.Props,
		Params: res.View.Params,
		HTML:   body.String(),
	}
}

func (s *Server) recordWSError(kind string) {
	if s.metrics != nil {
		s.metrics.RecordWebSocketError(kind)
	}
}
