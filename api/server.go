package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"movierec.app/config"
	recerr "movierec.app/errors"
	"movierec.app/models"
	"movierec.app/service"
)

const defaultLimit = 10

// Server represents the HTTP server and API handler
type Server struct {
	router                *gin.Engine
	config                *config.Config
	recommendationService service.RecommendationServiceInterface
	preferenceService     service.PreferenceServiceInterface
}

// NewServer creates and configures a new HTTP server
func NewServer(
	config *config.Config,
	recommendationService service.RecommendationServiceInterface,
	preferenceService service.PreferenceServiceInterface,
) *Server {
	router := gin.Default()
	router.Use(requestIDMiddleware())

	registerRatingValidation()

	server := &Server{
		router:                router,
		config:                config,
		recommendationService: recommendationService,
		preferenceService:     preferenceService,
	}

	server.setupRoutes()
	return server
}

// requestIDMiddleware tags every request with a correlation id
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// registerRatingValidation installs the rating_range binding used by RatingRequest
func registerRatingValidation() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("rating_range", func(fl validator.FieldLevel) bool {
			rating := fl.Field().Float()
			return rating >= 0.5 && rating <= 5.0
		})
	}
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/recommendations", s.getRecommendations)
		api.GET("/recommendations/collaborative", s.getCollaborativeRecommendations)
		api.GET("/movies/:id/similar", s.getSimilarMovies)
		api.POST("/movies/:id/like", s.likeMovie)
		api.DELETE("/movies/:id/like", s.unlikeMovie)
		api.POST("/movies/:id/rating", s.rateMovie)
		api.DELETE("/movies/:id/rating", s.removeRating)
		api.POST("/movies/:id/comments", s.addComment)
		api.GET("/movies/:id/comments", s.getComments)
		api.GET("/ml/health", s.mlHealth)
	}

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Start begins the HTTP server
func (s *Server) Start() error {
	return s.router.Run(fmt.Sprintf(":%d", s.config.Server.Port))
}

// GetRouter returns the router for testing purposes
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

func (s *Server) getRecommendations(c *gin.Context) {
	userID, err := s.queryUserID(c)
	if err != nil {
		s.handleError(c, err)
		return
	}
	limit := s.queryLimit(c)

	slog.Debug("Getting recommendations", "user_id", userID, "limit", limit)
	response := s.recommendationService.GetRecommendations(c.Request.Context(), userID, limit)
	c.JSON(http.StatusOK, response)
}

func (s *Server) getCollaborativeRecommendations(c *gin.Context) {
	userID, err := s.queryUserID(c)
	if err != nil {
		s.handleError(c, err)
		return
	}
	limit := s.queryLimit(c)

	slog.Debug("Getting collaborative recommendations", "user_id", userID, "limit", limit)
	response := s.recommendationService.GetCollaborativeRecommendations(c.Request.Context(), userID, limit)
	c.JSON(http.StatusOK, response)
}

func (s *Server) getSimilarMovies(c *gin.Context) {
	movieID, err := s.paramMovieID(c)
	if err != nil {
		s.handleError(c, err)
		return
	}
	limit := s.queryLimit(c)

	slog.Debug("Getting similar movies", "movie_id", movieID, "limit", limit)
	response := s.recommendationService.GetSimilarMovies(c.Request.Context(), movieID, limit)
	c.JSON(http.StatusOK, response)
}

func (s *Server) likeMovie(c *gin.Context) {
	userID, movieID, err := s.mutationParams(c)
	if err != nil {
		s.handleError(c, err)
		return
	}

	if err := s.preferenceService.LikeMovie(userID, movieID); err != nil {
		slog.Error("Like error", "error", err, "user_id", userID, "movie_id", movieID)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Movie liked"})
}

func (s *Server) unlikeMovie(c *gin.Context) {
	userID, movieID, err := s.mutationParams(c)
	if err != nil {
		s.handleError(c, err)
		return
	}

	if err := s.preferenceService.UnlikeMovie(userID, movieID); err != nil {
		slog.Error("Unlike error", "error", err, "user_id", userID, "movie_id", movieID)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Movie unliked"})
}

func (s *Server) rateMovie(c *gin.Context) {
	userID, movieID, err := s.mutationParams(c)
	if err != nil {
		s.handleError(c, err)
		return
	}

	var req models.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("Request binding error", "error", err)
		s.handleError(c, recerr.NewValidationError("rating must be between 0.5 and 5.0"))
		return
	}

	if err := s.preferenceService.RateMovie(userID, movieID, req.Rating); err != nil {
		slog.Error("Rating error", "error", err, "user_id", userID, "movie_id", movieID)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rating saved"})
}

func (s *Server) removeRating(c *gin.Context) {
	userID, movieID, err := s.mutationParams(c)
	if err != nil {
		s.handleError(c, err)
		return
	}

	if err := s.preferenceService.RemoveRating(userID, movieID); err != nil {
		slog.Error("Rating removal error", "error", err, "user_id", userID, "movie_id", movieID)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rating removed"})
}

func (s *Server) addComment(c *gin.Context) {
	userID, movieID, err := s.mutationParams(c)
	if err != nil {
		s.handleError(c, err)
		return
	}

	var req models.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("Request binding error", "error", err)
		s.handleError(c, recerr.NewValidationError("invalid comment format"))
		return
	}

	comment, err := s.preferenceService.AddComment(userID, movieID, req.Content)
	if err != nil {
		slog.Error("Comment error", "error", err, "user_id", userID, "movie_id", movieID)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (s *Server) getComments(c *gin.Context) {
	movieID, err := s.paramMovieID(c)
	if err != nil {
		s.handleError(c, err)
		return
	}

	comments, err := s.preferenceService.GetComments(movieID)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments, "count": len(comments)})
}

func (s *Server) mlHealth(c *gin.Context) {
	status := s.recommendationService.CheckMLHealth()
	c.JSON(http.StatusOK, status)
}

func (s *Server) queryUserID(c *gin.Context) (uint, error) {
	raw := c.Query("user_id")
	if raw == "" {
		return 0, recerr.NewValidationError("user_id parameter is required")
	}

	userID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || userID == 0 {
		return 0, recerr.NewValidationError("user_id must be a positive integer")
	}

	return uint(userID), nil
}

func (s *Server) queryLimit(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return defaultLimit
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return defaultLimit
	}
	if limit > 50 {
		return 50
	}

	return limit
}

func (s *Server) paramMovieID(c *gin.Context) (int, error) {
	movieID, err := strconv.Atoi(c.Param("id"))
	if err != nil || movieID < 1 {
		return 0, recerr.NewValidationError("movie id must be a positive integer")
	}
	return movieID, nil
}

func (s *Server) mutationParams(c *gin.Context) (uint, int, error) {
	userID, err := s.queryUserID(c)
	if err != nil {
		return 0, 0, err
	}
	movieID, err := s.paramMovieID(c)
	if err != nil {
		return 0, 0, err
	}
	return userID, movieID, nil
}

// handleError handles different types of application errors
func (s *Server) handleError(c *gin.Context, err error) {
	var appErr *recerr.AppError
	var statusCode int
	var message string

	if errors.As(err, &appErr) {
		switch appErr.Type {
		case recerr.ValidationError:
			statusCode = http.StatusBadRequest
			message = appErr.Message
		case recerr.NotFoundError:
			statusCode = http.StatusNotFound
			message = appErr.Message
		case recerr.AlreadyExistsError:
			statusCode = http.StatusConflict
			message = appErr.Message
		case recerr.ExternalAPIError, recerr.UpstreamTimeoutError:
			statusCode = http.StatusServiceUnavailable
			message = "External service unavailable"
		case recerr.DatabaseError:
			statusCode = http.StatusInternalServerError
			message = "Internal server error"
		default:
			statusCode = http.StatusInternalServerError
			message = "Internal server error"
		}
	} else {
		statusCode = http.StatusInternalServerError
		message = "Internal server error"
	}

	c.JSON(statusCode, models.ErrorResponse{Error: message})
}
