// Command kiez-lambda serves the store catalog from AWS Lambda behind
// API Gateway. The document store is selected with the same KIEZ_* variables
// as the HTTP server; the dynamo driver is the usual pairing.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/kiezwerk/kiez/catalog"
	"github.com/kiezwerk/kiez/docstore"
	"github.com/kiezwerk/kiez/internal/config"
	"github.com/kiezwerk/kiez/internal/logger"
	"github.com/kiezwerk/kiez/lambdaapi"
)

func main() {
	cfg, err := config.Load("", false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog := logger.New(cfg.Debug)
	defer zlog.Sync()

	docs, err := docstore.Open(context.Background(), docstore.Config{
		Driver: cfg.Store.Driver,
		Path:   cfg.Store.Path,
		S3: docstore.S3Config{
			Region:    cfg.Store.S3.Region,
			Bucket:    cfg.Store.S3.Bucket,
			Key:       cfg.Store.S3.Key,
			Endpoint:  cfg.Store.S3.Endpoint,
			PathStyle: cfg.Store.S3.PathStyle,
		},
		Dynamo: docstore.DynamoConfig{
			Region: cfg.Store.Dynamo.Region,
			Table:  cfg.Store.Dynamo.Table,
		},
	})
	if err != nil {
		log.Fatalf("open document store: %v", err)
	}

	svc := catalog.NewService(docs, zlog)
	h := lambdaapi.NewHandler(svc, zlog)
	lambda.Start(h.Handle)
}
