package server

import (
	"context"
	"ctchen222/line-em-up/internal/api/controller"
	"ctchen222/line-em-up/internal/api/response"
	"ctchen222/line-em-up/internal/game"
	"ctchen222/line-em-up/internal/hub"
	"ctchen222/line-em-up/internal/hub/types"
	"ctchen222/line-em-up/internal/player"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

type Server struct {
	hub             *hub.Hub
	matchController *controller.MatchController
	upgrader        websocket.Upgrader
}

func NewServer(h *hub.Hub, mc *controller.MatchController) *Server {
	return &Server{
		hub:             h,
		matchController: mc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Engine returns the gin router with the REST API and the websocket endpoint.
func (s *Server) Engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		response.SuccessResponse(c, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/matches", s.matchController.CreateMatch)
		api.GET("/matches/:id", s.matchController.GetMatch)
		api.GET("/matches/:id/stats", s.matchController.GetStatistics)
		api.GET("/results/games", s.matchController.ListGames)
		api.GET("/results/batches", s.matchController.ListBatches)
	}

	r.GET("/ws/matches/:id", s.handleWebSocket)
	return r
}

// handleWebSocket upgrades the connection and hands it to the hub. A seat token in the "token" query
// parameter seats the client on its mark; without one the client spectates.
func (s *Server) handleWebSocket(c *gin.Context) {
	matchID := c.Param("id")
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.String()),
		attribute.String("match.id", matchID),
	))
	defer span.End()

	playerID, mark := uuid.NewString(), game.None
	if token := c.Query("token"); token != "" {
		claims, err := s.hub.Issuer().Verify(token)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Invalid seat token")
			response.ErrorResponse(c, http.StatusUnauthorized, err.Error())
			return
		}
		if claims.MatchID != matchID {
			span.SetStatus(codes.Error, "Seat token for another match")
			response.ErrorResponse(c, http.StatusForbidden, "seat token belongs to another match")
			return
		}
		playerID, mark = claims.Subject, claims.Mark
	}
	span.SetAttributes(attribute.String("player.id", playerID), attribute.String("player.mark", string(mark)))

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	req := &types.RegistrationRequest{
		Player: player.NewPlayer(playerID, matchID, mark, conn),
		Ctx:    context.WithoutCancel(ctx),
	}
	if err := s.hub.Join(ctx, req); err != nil {
		slog.WarnContext(ctx, "Hub refused connection", "player.id", playerID, "error", err)
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, err.Error()))
		conn.Close()
	}
}
