// Package http provides the HTTP server infrastructure.
// API surface and wiring follow the gin controller/route style; the
// framework stays in this outermost layer.
package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/Niso4ever/agentic-dispatch-go/internal/adapters/forecast"
	"github.com/Niso4ever/agentic-dispatch-go/internal/domain/entities"
)

// DispatchRunner is the slice of the dispatch usecase the server needs.
type DispatchRunner interface {
	Run(ctx context.Context, req *entities.DispatchRequest) (*entities.DispatchResponse, error)
}

// WeatherService is the slice of the weather client the server needs.
type WeatherService interface {
	Current(ctx context.Context, location string) (*forecast.Conditions, error)
}

// Server is the HTTP server for the dispatch API.
type Server struct {
	dispatch DispatchRunner
	weather  WeatherService // nil when no weather key is configured
	addr     string
	engine   *gin.Engine
}

// dispatchRequest is the POST /dispatch body.
type dispatchRequest struct {
	Query     string              `json:"query" binding:"required"`
	PlantMeta *entities.PlantMeta `json:"plant_meta"`
}

// dispatchResponse carries the stitched answer under "result".
type dispatchResponse struct {
	RequestID string `json:"request_id"`
	Query     string `json:"query"`
	Result    string `json:"result"`
	Rejected  bool   `json:"rejected,omitempty"`
}

// NewServer creates the HTTP server.
func NewServer(dispatch DispatchRunner, weather WeatherService, addr string) *Server {
	if addr == "" {
		addr = ":8080"
	}
	s := &Server{
		dispatch: dispatch,
		weather:  weather,
		addr:     addr,
	}
	s.engine = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.Default()
	router.Use(corsMiddleware())

	router.GET("/", s.handleRoot)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/dispatch", s.handleDispatch)
		v1.GET("/weather", s.handleWeather)
		v1.GET("/system/info", s.handleSystemInfo)
		v1.GET("/health", s.handleHealth)
	}

	return router
}

// Start runs the HTTP server until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // the pipeline can hold a slow LLM call
	}

	log.Printf("[INFO] dispatch API listening on %s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Agentic dispatch API is running. POST /api/v1/dispatch with an operator query.",
	})
}

func (s *Server) handleDispatch(c *gin.Context) {
	var req dispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. A non-empty query is required."})
		return
	}

	requestID := uuid.NewString()
	log.Printf("[INFO] dispatch request %s: %q", requestID, req.Query)

	resp, err := s.dispatch.Run(c.Request.Context(), &entities.DispatchRequest{
		Query:     req.Query,
		PlantMeta: req.PlantMeta,
	})
	if err != nil {
		log.Printf("[ERROR] dispatch request %s failed: %v", requestID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	body := dispatchResponse{
		RequestID: requestID,
		Query:     req.Query,
		Result:    resp.Answer,
		Rejected:  resp.Rejected,
	}
	if resp.Rejected {
		c.JSON(http.StatusUnprocessableEntity, body)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleWeather(c *gin.Context) {
	if s.weather == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "weather provider is not configured"})
		return
	}

	location := c.DefaultQuery("location", "Abu Dhabi")
	cond, err := s.weather.Current(c.Request.Context(), location)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cond)
}

func (s *Server) handleSystemInfo(c *gin.Context) {
	osName := "Unknown OS"
	if hostInfo, err := host.Info(); err == nil {
		osName = hostInfo.OS + " " + hostInfo.Platform
	}

	cpuName := "Unknown CPU"
	if cpuInfo, err := cpu.Info(); err == nil && len(cpuInfo) > 0 {
		cpuName = cpuInfo[0].ModelName
	}

	c.JSON(http.StatusOK, gin.H{
		"device_name": cpuName + " (" + osName + ")",
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
