package handler

import (
	"net/http"

	fp "github.com/wyciszone/fpgrowth-with-weight/fptree"
	PS "github.com/wyciszone/fpgrowth-with-weight/pattern_service"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type MineTransaction struct {
	Tags   []string `json:"tags"`
	Weight *float64 `json:"weight,omitempty"`
}

type MineRequest struct {
	Transactions   []MineTransaction `json:"transactions"`
	MinSupport     float64           `json:"min_support"`
	MinOccurrences float64           `json:"min_occurrences"`
	ExcludedLabels []string          `json:"excluded_labels"`
	Limit          int               `json:"limit"`
	Iterative      bool              `json:"iterative"`
}

func StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// MineHandler mines the posted batch and responds with the run, top rows included.
func MineHandler(ps *PS.PatternService, defaultLimit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MineRequest
		if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request json"})
			return
		}
		limit := req.Limit
		if limit <= 0 {
			limit = defaultLimit
		}

		trns := make([]fp.Transaction, 0, len(req.Transactions))
		for _, t := range req.Transactions {
			trns = append(trns, fp.Transaction{Labels: t.Tags, Weight: t.Weight})
		}
		run, err := ps.Run(c.Request.Context(), PS.Request{
			Transactions: trns,
			Config: fp.Config{
				MinSupport:     req.MinSupport,
				MinOccurrences: req.MinOccurrences,
				ExcludedLabels: req.ExcludedLabels,
			},
			Limit:     limit,
			Iterative: req.Iterative,
		})
		if err != nil {
			if isInputError(err) {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			log.WithError(err).Error("Failed to mine patterns")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to mine patterns"})
			return
		}
		c.JSON(http.StatusOK, run)
	}
}

func GetRunHandler(ps *PS.PatternService) gin.HandlerFunc {
	return func(c *gin.Context) {
		run, ok := ps.GetRun(c.Param("id"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Run not found"})
			return
		}
		c.JSON(http.StatusOK, run)
	}
}

func isInputError(err error) bool {
	return errors.Is(err, fp.ErrInvalidThreshold) ||
		errors.Is(err, fp.ErrInvalidWeight) ||
		errors.Is(err, fp.ErrInvalidLabel)
}
