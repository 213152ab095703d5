package log

import "go.uber.org/zap"

var (
	SourceCatalog  = zap.String("source", "catalog")
	SourceMetadata = zap.String("source", "metadata")
	SourceStore    = zap.String("source", "store")
	SourceAPI      = zap.String("source", "api")
)
