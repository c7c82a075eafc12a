// Package api is the thin HTTP boundary proving the transformation loop is
// reachable from outside the process: a request arrives, an existing
// ports.TransformStrategy runs it, a response leaves. No transport-layer
// concern (auth, persistence, retries) lives here.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trmcore/domain/trm"
	"trmcore/internal/registry"
	"trmcore/ports"
)

// Server wraps a gin.Engine over the registry and embedding/strategy
// adapters already wired by the caller.
type Server struct {
	router   *gin.Engine
	registry *registry.Registry
	embedder ports.EmbeddingPort
	strategy func(pack *trm.Pack) (ports.TransformStrategy, error)
}

// NewServer builds the HTTP shell. strategyFor resolves the strategy to
// run for a given pack (letting the caller decide rule/llm/hybrid).
func NewServer(reg *registry.Registry, embedder ports.EmbeddingPort, strategyFor func(pack *trm.Pack) (ports.TransformStrategy, error)) *Server {
	s := &Server{router: gin.Default(), registry: reg, embedder: embedder, strategy: strategyFor}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.POST("/measure", s.handleMeasure)
	s.router.POST("/transform", s.handleTransform)
}

// Run starts the HTTP server on addr, blocking until it stops.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

type measureRequest struct {
	Pack string `json:"pack" binding:"required"`
	Text string `json:"text" binding:"required"`
	Rank int    `json:"rank"`
}

func (s *Server) handleMeasure(c *gin.Context) {
	var req measureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pack, err := s.registry.Pack(req.Pack)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	rank := req.Rank
	if rank <= 0 {
		rank = pack.Rank
	}
	emb, err := s.embedder.Embed(c.Request.Context(), req.Text)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	proj := trm.NewRandomProjection(len(emb), rank, 1)
	rho, _, err := trm.Build(emb, trm.BuildOptions{Rank: rank, Shrinkage: 0.01, Projection: proj})
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	readings, err := pack.Measure(rho)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"readings": readings.Probs})
}

type transformRequest struct {
	Pack                 string  `json:"pack" binding:"required"`
	Axis                 string  `json:"axis" binding:"required"`
	Text                 string  `json:"text" binding:"required"`
	ImprovementThreshold float64 `json:"improvement_threshold"`
	MaxChangeRatio       float64 `json:"max_change_ratio"`
}

func (s *Server) handleTransform(c *gin.Context) {
	var req transformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pack, err := s.registry.Pack(req.Pack)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	strategy, err := s.strategy(pack)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	threshold := req.ImprovementThreshold
	if threshold <= 0 {
		threshold = 0.05
	}
	maxChangeRatio := req.MaxChangeRatio
	if maxChangeRatio <= 0 {
		maxChangeRatio = 0.35
	}

	result, err := strategy.Transform(c.Request.Context(), trm.TransformationContext{
		Text:                 req.Text,
		Pack:                 req.Pack,
		Axis:                 req.Axis,
		ImprovementThreshold: threshold,
		MaxChangeRatio:       maxChangeRatio,
	})
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
