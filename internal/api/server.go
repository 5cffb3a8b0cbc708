// Package api serves the generator over HTTP: sampling, both evolutionary
// strategies, likelihood scoring and loss assembly, plus an in-memory store
// of finished runs.
package api

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/drugex/internal/generator"
)

type Server struct {
	store   *RunStore
	service *GenerationService
	clock   func() time.Time
}

func NewServer(store *RunStore, service *GenerationService) *Server {
	if store == nil {
		store = NewRunStore()
	}
	return &Server{
		store:   store,
		service: service,
		clock:   time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)

	e.POST("/v1/sample", s.handleSample)
	e.POST("/v1/evolve", s.handleEvolve)
	e.POST("/v1/likelihood", s.handleLikelihood)
	e.POST("/v1/loss", s.handleLoss)

	e.GET("/v1/runs", s.handleListRuns)
	e.GET("/v1/runs/:id", s.handleGetRun)
	e.DELETE("/v1/runs/:id", s.handleDeleteRun)
}

func (s *Server) handleHealth(c *echo.Context) error {
	if s.service == nil {
		return writeError(c, http.StatusServiceUnavailable, "server_error", "generation service not configured", "", "")
	}
	return c.JSON(http.StatusOK, s.service.Health())
}

func (s *Server) handleSample(c *echo.Context) error {
	req, err := decodeJSON[GenerateRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.Strategy != "" && req.Strategy != string(generator.StrategySample) {
		return writeBadRequest(c, fmt.Sprintf("strategy %q is not valid for /v1/sample; use /v1/evolve", req.Strategy))
	}
	if isTrue(req.Crossover) || isTrue(req.Mutate) {
		return writeBadRequest(c, "crossover and mutate require /v1/evolve")
	}
	return s.generate(c, req, generator.StrategySample)
}

func (s *Server) handleEvolve(c *echo.Context) error {
	req, err := decodeJSON[GenerateRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	strategy := generator.StrategyBlend
	if req.Strategy != "" {
		if strategy, err = generator.ParseStrategy(req.Strategy); err != nil {
			return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error(), "strategy", "")
		}
		if strategy == generator.StrategySample {
			return writeBadRequest(c, "use /v1/sample for plain sampling")
		}
	}
	return s.generate(c, req, strategy)
}

func (s *Server) generate(c *echo.Context, req GenerateRequest, strategy generator.Strategy) error {
	if s.service == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "generation service not configured", "", "")
	}
	p := GenerateParams{Strategy: strategy, Seed: req.Seed}
	if req.BatchSize != nil {
		if *req.BatchSize <= 0 {
			return writeError(c, http.StatusBadRequest, "invalid_request_error", "batch_size must be positive", "batch_size", "")
		}
		p.BatchSize = *req.BatchSize
	}
	if strategy != generator.StrategySample {
		p.Epsilon = s.service.cfg.Epsilon
		if req.Epsilon != nil {
			if e := *req.Epsilon; math.IsNaN(e) || e < 0 || e > 1 {
				return writeError(c, http.StatusBadRequest, "invalid_request_error", "epsilon must be within [0, 1]", "epsilon", "")
			}
			p.Epsilon = *req.Epsilon
		}
		// Auxiliary networks default to on when loaded.
		p.UseCrossover = boolOr(req.Crossover, s.service.cfg.Crossover != nil)
		p.UseMutate = boolOr(req.Mutate, s.service.cfg.Mutate != nil)
	}

	run, err := s.service.Generate(c.Request().Context(), p)
	if err != nil {
		return writeServiceError(c, err)
	}
	if req.Store == nil || *req.Store {
		s.store.Put(run, s.clock())
	} else {
		run.Object = "run"
		run.CreatedAt = s.clock().Unix()
	}
	return c.JSON(http.StatusOK, run)
}

func (s *Server) handleLikelihood(c *echo.Context) error {
	if s.service == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "generation service not configured", "", "")
	}
	req, err := decodeJSON[LikelihoodRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	seqs, err := s.service.Encode(req.SMILES, req.Sequences)
	if err != nil {
		return writeServiceError(c, err)
	}
	scores, err := s.service.Likelihood(c.Request().Context(), seqs, req.Seed)
	if err != nil {
		return writeServiceError(c, err)
	}

	eos := s.service.gen.EOS()
	resp := LikelihoodResponse{
		Object: "likelihood",
		Scores: make([][]float32, scores.R),
		Total:  make([]float64, scores.R),
	}
	for b := 0; b < scores.R; b++ {
		resp.Scores[b] = append([]float32(nil), scores.Row(b)...)
		for t, v := range scores.Row(b) {
			resp.Total[b] += float64(v)
			if seqs.At(b, t) == eos {
				break
			}
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleLoss(c *echo.Context) error {
	if s.service == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "generation service not configured", "", "")
	}
	req, err := decodeJSON[LossRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	seqs, err := s.service.Encode(req.SMILES, req.Sequences)
	if err != nil {
		return writeServiceError(c, err)
	}
	loss, err := s.service.Loss(c.Request().Context(), seqs, req.Reward, req.Seed)
	if err != nil {
		return writeServiceError(c, err)
	}
	kind := "policy_gradient"
	if req.Reward == nil {
		kind = "mle"
	}
	return c.JSON(http.StatusOK, LossResponse{
		Object: "loss",
		Kind:   kind,
		Loss:   loss.Value,
		Grad:   matRows(loss.Grad.R, loss.Grad.Row),
	})
}

func (s *Server) handleListRuns(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"object": "list",
		"data":   s.store.IDs(),
	})
}

func (s *Server) handleGetRun(c *echo.Context) error {
	id := c.Param("id")
	run, ok := s.store.Get(id)
	if !ok {
		return writeNotFound(c, "run not found")
	}
	return c.JSON(http.StatusOK, run)
}

func (s *Server) handleDeleteRun(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "run not found")
	}
	return c.JSON(http.StatusOK, DeleteRunResponse{ID: id, Object: "run.deleted", Deleted: true})
}

func matRows(n int, row func(int) []float32) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		out[i] = append([]float32(nil), row(i)...)
	}
	return out
}

func isTrue(b *bool) bool { return b != nil && *b }

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// decodeJSON treats an empty body as the zero request.
func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&out); err != nil && !errors.Is(err, io.EOF) {
		return out, err
	}
	return out, nil
}
