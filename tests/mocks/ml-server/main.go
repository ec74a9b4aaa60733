package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

type ratingPayload struct {
	MovieID int     `json:"movie_id"`
	Rating  float64 `json:"rating"`
}

type recommendationRequest struct {
	UserID           uint            `json:"user_id"`
	Ratings          []ratingPayload `json:"ratings"`
	LikedMovies      []int           `json:"liked_movies"`
	NRecommendations int             `json:"n_recommendations"`
	Method           string          `json:"method"`
}

type similarMoviesRequest struct {
	MovieID          int `json:"movie_id"`
	NRecommendations int `json:"n_recommendations"`
}

type collaborativeRequest struct {
	UserID           uint            `json:"user_id"`
	Ratings          []ratingPayload `json:"ratings"`
	NRecommendations int             `json:"n_recommendations"`
}

type scoringResponse struct {
	MovieIDs []int     `json:"movie_ids"`
	Scores   []float64 `json:"scores"`
	Method   string    `json:"method"`
}

// A fixed popular-movies pool stands in for the real model output
var moviePool = []int{550, 278, 680, 155, 13, 423, 769, 24428, 329, 107, 238, 240, 122, 424, 389}

func scoredSlice(offset, n int, method string) scoringResponse {
	if n < 1 || n > len(moviePool) {
		n = 10
	}

	response := scoringResponse{Method: method}
	for i := 0; i < n; i++ {
		response.MovieIDs = append(response.MovieIDs, moviePool[(offset+i)%len(moviePool)])
		response.Scores = append(response.Scores, 0.95-0.03*float64(i))
	}
	return response
}

func main() {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "healthy",
			"model_loaded": true,
			"n_movies":     len(moviePool),
		})
	})

	r.POST("/api/ml/recommendations", func(c *gin.Context) {
		var req recommendationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		// user_id 500 simulates a model failure, 408 a slow model
		if req.UserID == 500 {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "model inference failed"})
			return
		}
		if req.UserID == 408 {
			time.Sleep(15 * time.Second)
		}

		c.JSON(http.StatusOK, scoredSlice(int(req.UserID)%len(moviePool), req.NRecommendations, req.Method))
	})

	r.POST("/api/ml/similar", func(c *gin.Context) {
		var req similarMoviesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		if req.MovieID == 500 {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "model inference failed"})
			return
		}

		c.JSON(http.StatusOK, scoredSlice(req.MovieID%len(moviePool), req.NRecommendations, "content_similarity"))
	})

	r.POST("/api/ml/collaborative", func(c *gin.Context) {
		var req collaborativeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		if len(req.Ratings) == 0 {
			c.JSON(http.StatusOK, scoringResponse{MovieIDs: []int{}, Scores: []float64{}, Method: "no_data"})
			return
		}

		c.JSON(http.StatusOK, scoredSlice(int(req.UserID)%len(moviePool), req.NRecommendations, "collaborative_filtering"))
	})

	slog.Info("Mock ML scoring server starting on :5000")
	if err := r.Run(":5000"); err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
