// Package s3source builds a view registry from objects stored in an S3 bucket.
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	reg, err := s3source.Registry(ctx, s3.NewFromConfig(cfg), "site-assets", "views/", "html", decode)
//
// Objects are listed once, when the registry is built. Their bodies are
// fetched the first time the corresponding view is loaded.
package s3source

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/localeroute/pkg/views"
)

// API is the subset of the S3 client used by Registry.
type API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Registry lists every object under prefix whose key ends in "."+ext and
// registers it under its view path. The key "views/blog/Post.html" with
// prefix "views/" becomes the view "blog/Post".
func Registry[M any](ctx context.Context, client API, bucket, prefix, ext string, decode views.DecodeFunc[M]) (views.Registry[M], error) {
	if ext == "" {
		ext = views.DefaultExtension
	}
	suffix := "." + ext

	reg := make(views.Registry[M])
	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, suffix) {
				continue
			}
			name := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(key, prefix), "/"), suffix)
			if name == "" {
				continue
			}
			reg[views.ViewPath(name, ext)] = fetch(client, bucket, key, name, decode)
		}
	}

	return reg, nil
}

func fetch[M any](client API, bucket, key, name string, decode views.DecodeFunc[M]) views.LoadFunc[M] {
	return func(ctx context.Context) (M, error) {
		var zero M
		out, err := client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return zero, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
		}
		defer out.Body.Close()

		data, err := io.ReadAll(out.Body)
		if err != nil {
			return zero, fmt.Errorf("read s3://%s/%s: %w", bucket, key, err)
		}
		return decode(name, data)
	}
}
