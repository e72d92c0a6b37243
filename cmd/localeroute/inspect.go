package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/localeroute/internal/errors"
	"github.com/vango-dev/localeroute/pkg/httphost"
	"github.com/vango-dev/localeroute/pkg/routetree"
	"github.com/vango-dev/localeroute/pkg/router"
	"github.com/vango-dev/localeroute/pkg/views"
)

// splitURI separates a leading language code from uri. Without one, fallback
// is returned as the language.
func splitURI(uri, fallback string) (lang, rest string) {
	if !strings.HasPrefix(uri, "/") {
		uri = "/" + uri
	}
	if l, r, ok := router.SplitLang(uri); ok {
		return l, r
	}
	return fallback, uri
}

func unsupported(lang string, rt *httphost.Router) error {
	return errors.New(errors.CodeUnsupportedLanguage).
		WithDetail(fmt.Sprintf("%q is not one of the supported languages %v", lang, rt.Config().SupportedLangs))
}

type matchOutput struct {
	Lang     string            `json:"lang"`
	Route    string            `json:"route"`
	View     string            `json:"view"`
	Params   map[string]string `json:"params"`
	NotFound bool              `json:"not_found"`
}

func matchCmd(configPath func() string) *cobra.Command {
	var (
		lang   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "match <uri>",
		Short: "Show the route a path resolves to",
		Long: `Match finds the route for a path within one language.

The language is taken from --lang, else from the path prefix, else the
default language.

Examples:
  localeroute match /fr/blogue/bonjour
  localeroute match /blog/hello --lang en --json`,
		Args: checkArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(configPath(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			rt, err := a.routesOnly()
			if err != nil {
				return err
			}

			pathLang, uri := splitURI(args[0], rt.Config().DefaultLang)
			if lang == "" {
				lang = pathLang
			}
			if !rt.Supports(lang) {
				return unsupported(lang, rt)
			}

			res := rt.FindRoute(uri, lang)
			out := matchOutput{
				Lang:     lang,
				Route:    res.FullPath,
				View:     res.Node.View,
				Params:   res.Params,
				NotFound: res.NotFound,
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			if out.NotFound {
				fmt.Fprintf(w, "route:  (not found)\n")
			} else {
				fmt.Fprintf(w, "route:  %s\n", out.Route)
			}
			fmt.Fprintf(w, "view:   %s\n", out.View)
			if len(out.Params) > 0 {
				fmt.Fprintf(w, "params: %s\n", formatParams(out.Params))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Language to match in")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the match as JSON")
	return cmd
}

func formatParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + params[k]
	}
	return strings.Join(parts, " ")
}

func translateCmd(configPath func() string) *cobra.Command {
	var (
		from   string
		to     string
		params map[string]string
	)

	cmd := &cobra.Command{
		Use:   "translate <uri>",
		Short: "Translate a path into another language",
		Long: `Translate rewrites a path using the target language's templates.
Captured params are carried over; --param overrides them.

Examples:
  localeroute translate /en/blog/hello --to fr
  localeroute translate /blog/hello --from en --to fr --param slug=bonjour`,
		Args: checkArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(configPath(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			rt, err := a.routesOnly()
			if err != nil {
				return err
			}

			pathLang, uri := splitURI(args[0], rt.Config().DefaultLang)
			if from == "" {
				from = pathLang
			}
			for _, l := range []string{from, to} {
				if !rt.Supports(l) {
					return unsupported(l, rt)
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), rt.Translate(uri, from, to, params))
			return nil
		},
	}

	cmd.Flags().StringVarP(&from, "from", "f", "", "Source language (default from the path prefix)")
	cmd.Flags().StringVarP(&to, "to", "t", "", "Target language")
	cmd.Flags().StringToStringVarP(&params, "param", "p", nil, "Param to substitute, as name=value")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func routesCmd(configPath func() string) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the route tree",
		Args:  checkArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(configPath(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			rt, err := a.routesOnly()
			if err != nil {
				return err
			}
			if lang == "" {
				lang = rt.Config().DefaultLang
			}
			if !rt.Supports(lang) {
				return unsupported(lang, rt)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tPATH\tVIEW\tAUTH")
			for _, info := range httphost.ListRoutes(rt.Tree(), lang) {
				path := info.Path
				if path == "" {
					path = "-"
				}
				auth := ""
				if info.Auth {
					auth = "yes"
				}
				fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\n", strings.Repeat("  ", info.Depth), info.Key, path, info.View, auth)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Language of the listed paths (default language if empty)")
	return cmd
}

func viewsCmd(configPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "views",
		Short: "List the view registry and check routes against it",
		Args:  checkArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(configPath(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			tree, err := a.loadRoutes()
			if err != nil {
				return err
			}
			reg, err := a.loadViews(cmd.Context())
			if err != nil {
				return err
			}
			rt, err := a.newRouter(tree, reg)
			if err != nil {
				return err
			}

			if rt.GetViews(nil) == nil {
				return errors.New(errors.CodeEmptyViewRegistry)
			}

			w := cmd.OutOrStdout()
			for _, key := range reg.Keys() {
				fmt.Fprintln(w, key)
			}

			ext := a.cfg.Views.Extension
			var missing []string
			_ = tree.Walk(func(fullPath string, n *routetree.Node, _ int) error {
				if _, ok := reg[views.ViewPath(n.View, ext)]; !ok {
					missing = append(missing, fullPath+" → "+n.View)
				}
				return nil
			})
			for _, m := range missing {
				fmt.Fprintf(w, "✗ missing view for route %s\n", m)
			}

			if _, ok := reg[views.ViewPath(routetree.NotFoundView, ext)]; !ok {
				return errors.New(errors.CodeNoNotFoundView)
			}
			success(w, "%d views, %d routes without a view", reg.Len(), len(missing))
			return nil
		},
	}
}
