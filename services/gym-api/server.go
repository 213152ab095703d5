package main

import (
	"github.com/gin-gonic/gin"

	gymserver "github.com/pandarack/gym-server"
)

type GymServer struct {
	apiToken  string
	jwtSecret []byte
	route     *gin.Engine

	catalog       *gymserver.Catalog
	metadataStore *gymserver.MetadataStore
	relationStore gymserver.RelationStore
}

func NewGymServer(catalog *gymserver.Catalog,
	metadataStore *gymserver.MetadataStore,
	relationStore gymserver.RelationStore,
	apiToken string,
	jwtSecret []byte) *GymServer {
	r := gin.New()

	return &GymServer{
		apiToken:  apiToken,
		jwtSecret: jwtSecret,
		route:     r,

		catalog:       catalog,
		metadataStore: metadataStore,
		relationStore: relationStore,
	}
}

func (s *GymServer) Run(port string) error {
	return s.route.Run(port)
}
