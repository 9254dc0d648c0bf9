package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// requestError is a client mistake reported with its HTTP status
type requestError struct {
	status  int
	message string
}

var (
	errMissingFields = &requestError{http.StatusBadRequest, "Missing required fields"}
	errTooLarge      = &requestError{http.StatusRequestEntityTooLarge, "Email too large"}
)

type processRequest struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
	Sender  string `json:"sender"`
}

type processResponse struct {
	ID                *int64  `json:"id,omitempty"`
	Category          string  `json:"category"`
	ConfidenceScore   float64 `json:"confidence_score"`
	SuggestedResponse string  `json:"suggested_response"`
	IsProductive      bool    `json:"is_productive"`
}

type batchItem struct {
	Index  int              `json:"index"`
	Result *processResponse `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

type recordResponse struct {
	ID                int64     `json:"id"`
	Subject           string    `json:"subject"`
	Sender            string    `json:"sender"`
	Category          string    `json:"category"`
	ConfidenceScore   float64   `json:"confidence_score"`
	ConfidenceDisplay float64   `json:"confidence_display"`
	SuggestedResponse string    `json:"suggested_response"`
	IsProductive      bool      `json:"is_productive"`
	ReceivedAt        time.Time `json:"received_at"`
}

type analyticsResponse struct {
	TotalEmails            int              `json:"total_emails"`
	ProductiveEmails       int              `json:"productive_emails"`
	UnproductiveEmails     int              `json:"unproductive_emails"`
	ProductivePercentage   float64          `json:"productive_percentage"`
	UnproductivePercentage float64          `json:"unproductive_percentage"`
	RecentEmails           []recordResponse `json:"recent_emails"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// validate trims the request and checks it against the size budget
func (s *Server) validate(req *processRequest) (core.EmailInput, *requestError) {
	input := core.EmailInput{
		Subject: strings.TrimSpace(req.Subject),
		Content: strings.TrimSpace(req.Content),
		Sender:  strings.TrimSpace(req.Sender),
	}
	if input.Subject == "" || input.Content == "" || input.Sender == "" {
		return input, errMissingFields
	}
	if s.cfg.MaxEmailLength > 0 &&
		utf8.RuneCountInString(input.Subject)+utf8.RuneCountInString(input.Content) > s.cfg.MaxEmailLength {
		return input, errTooLarge
	}
	return input, nil
}

// bodyLimit bounds request bodies to what n valid emails could need
func (s *Server) bodyLimit(n int) int64 {
	perEmail := int64(64 << 10)
	if s.cfg.MaxEmailLength > 0 {
		perEmail += int64(s.cfg.MaxEmailLength) * utf8.UTFMax
	}
	return perEmail * int64(n)
}

// decode reads a JSON body, reporting oversized bodies as 413
func decode(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, errTooLarge.status, errTooLarge.message)
		} else {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
		}
		return false
	}
	return true
}

func (s *Server) submit(r *http.Request, input core.EmailInput) *processResponse {
	record, err := s.service.Submit(r.Context(), input)
	resp := &processResponse{
		Category:          string(record.Result.Category),
		ConfidenceScore:   record.Result.Confidence,
		SuggestedResponse: record.Result.SuggestedResponse,
		IsProductive:      record.Result.IsProductive,
	}
	if err == nil && record.ID > 0 {
		id := record.ID
		resp.ID = &id
	}
	return resp
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if !decode(w, r, s.bodyLimit(1), &req) {
		return
	}

	input, reqErr := s.validate(&req)
	if reqErr != nil {
		writeError(w, reqErr.status, reqErr.message)
		return
	}

	writeJSON(w, http.StatusOK, s.submit(r, input))
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var reqs []processRequest
	if !decode(w, r, s.bodyLimit(s.cfg.MaxBatchSize), &reqs) {
		return
	}
	if len(reqs) == 0 {
		writeError(w, http.StatusBadRequest, "Empty batch")
		return
	}
	if len(reqs) > s.cfg.MaxBatchSize {
		writeError(w, http.StatusRequestEntityTooLarge, "Batch too large")
		return
	}

	items := make([]batchItem, len(reqs))
	g, _ := errgroup.WithContext(r.Context())
	g.SetLimit(min(s.cfg.BatchConcurrency, len(reqs)))

	for i := range reqs {
		g.Go(func() error {
			items[i].Index = i
			input, reqErr := s.validate(&reqs[i])
			if reqErr != nil {
				items[i].Error = reqErr.message
				return nil
			}
			items[i].Result = s.submit(r, input)
			return nil
		})
	}
	_ = g.Wait()

	writeJSON(w, http.StatusOK, items)
}

func toRecordResponse(record core.EmailRecord) recordResponse {
	return recordResponse{
		ID:                record.ID,
		Subject:           record.Input.Subject,
		Sender:            record.Input.Sender,
		Category:          string(record.Result.Category),
		ConfidenceScore:   record.Result.Confidence,
		ConfidenceDisplay: math.Round(record.Result.Confidence*1000) / 10,
		SuggestedResponse: record.Result.SuggestedResponse,
		IsProductive:      record.Result.IsProductive,
		ReceivedAt:        record.ReceivedAt,
	}
}

func toRecordResponses(records []core.EmailRecord) []recordResponse {
	out := make([]recordResponse, 0, len(records))
	for _, record := range records {
		out = append(out, toRecordResponse(record))
	}
	return out
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	records, err := s.service.History(r.Context(), limit)
	if err != nil {
		s.logger.Warn("Failed to load email history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load emails")
		return
	}

	writeJSON(w, http.StatusOK, toRecordResponses(records))
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Analytics(r.Context())
	if err != nil {
		s.logger.Warn("Failed to compute analytics", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to compute analytics")
		return
	}

	writeJSON(w, http.StatusOK, analyticsResponse{
		TotalEmails:            stats.Total,
		ProductiveEmails:       stats.Productive,
		UnproductiveEmails:     stats.Unproductive,
		ProductivePercentage:   stats.ProductivePercentage,
		UnproductivePercentage: stats.UnproductivePercentage,
		RecentEmails:           toRecordResponses(stats.Recent),
	})
}
