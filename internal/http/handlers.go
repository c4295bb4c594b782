package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"salesboard/internal/core"
	applog "salesboard/internal/log"
)

// summaryRecord is the projection used by the aggregate endpoints.
type summaryRecord struct {
	ID         int64      `json:"id"`
	Category   string     `json:"category"`
	Price      float64    `json:"price"`
	Sold       bool       `json:"sold"`
	DateOfSale *time.Time `json:"dateOfSale"`
	MonthName  string     `json:"monthName"`
}

// detailRecord carries every stored field; used by search and /home.
type detailRecord struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Price       float64    `json:"price"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Image       string     `json:"image"`
	Sold        bool       `json:"sold"`
	DateOfSale  *time.Time `json:"dateOfSale"`
	MonthName   string     `json:"monthName"`
}

type dataResponse struct {
	Records           []summaryRecord `json:"records"`
	Count             int             `json:"count"`
	TotalSaleAmount   json.Number     `json:"totalSaleAmount"`
	TotalSoldItems    int             `json:"totalSoldItems"`
	TotalNotSoldItems int             `json:"totalNotSoldItems"`
}

type barChartResponse struct {
	Records     []summaryRecord `json:"records"`
	Count       int             `json:"count"`
	PriceRanges map[string]int  `json:"priceRanges"`
}

type pieChartResponse struct {
	Records        []summaryRecord `json:"records"`
	Count          int             `json:"count"`
	CategoryCounts map[string]int  `json:"categoryCounts"`
}

type statisticResponse struct {
	Records           []summaryRecord `json:"records"`
	Count             int             `json:"count"`
	TotalSaleAmount   json.Number     `json:"totalSaleAmount"`
	TotalSoldItems    int             `json:"totalSoldItems"`
	TotalNotSoldItems int             `json:"totalNotSoldItems"`
	PriceRanges       map[string]int  `json:"priceRanges"`
	CategoryCounts    map[string]int  `json:"categoryCounts"`
}

func utcDate(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	u := d.UTC()
	return &u
}

func toSummaries(records []core.LabeledRecord) []summaryRecord {
	out := make([]summaryRecord, 0, len(records))
	for _, r := range records {
		out = append(out, summaryRecord{
			ID:         r.ID,
			Category:   r.Category,
			Price:      r.Price,
			Sold:       r.Sold,
			DateOfSale: utcDate(r.DateOfSale),
			MonthName:  r.MonthName,
		})
	}
	return out
}

func toDetails(records []core.LabeledRecord) []detailRecord {
	out := make([]detailRecord, 0, len(records))
	for _, r := range records {
		out = append(out, detailRecord{
			ID:          r.ID,
			Title:       r.Title,
			Price:       r.Price,
			Description: r.Description,
			Category:    r.Category,
			Image:       r.Image,
			Sold:        r.Sold,
			DateOfSale:  utcDate(r.DateOfSale),
			MonthName:   r.MonthName,
		})
	}
	return out
}

// handleHome lists the whole catalog, seeding an empty store first.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	records, err := s.seeder.Catalog(r.Context())
	if err != nil {
		writeServiceError(w, r, applog.OpList, "", err)
		return
	}
	writeJSON(w, http.StatusOK, toDetails(records))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	value, err := parseSearchValue(w, r)
	if err != nil {
		if errors.Is(err, errInvalidBody) {
			writeError(w, http.StatusBadRequest, msgInvalidBody)
			return
		}
		writeServiceError(w, r, applog.OpSearch, "", err)
		return
	}

	records, err := s.stats.Search(r.Context(), r.PathValue("monthName"), value)
	if err != nil {
		writeServiceError(w, r, applog.OpSearch, value, err)
		return
	}
	logServed(r, applog.OpSearch, value, len(records))
	writeJSON(w, http.StatusOK, toDetails(records))
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	records, totals, err := s.stats.Totals(r.Context(), r.PathValue("monthName"))
	if err != nil {
		writeServiceError(w, r, applog.OpSelect, "", err)
		return
	}
	logServed(r, applog.OpSelect, "", len(records))
	writeJSON(w, http.StatusOK, dataResponse{
		Records:           toSummaries(records),
		Count:             totals.Count,
		TotalSaleAmount:   json.Number(totals.TotalSaleAmount.String()),
		TotalSoldItems:    totals.TotalSoldItems,
		TotalNotSoldItems: totals.TotalNotSoldItems,
	})
}

func (s *Server) handleBarChart(w http.ResponseWriter, r *http.Request) {
	records, ranges, err := s.stats.PriceRanges(r.Context(), r.PathValue("monthName"))
	if err != nil {
		writeServiceError(w, r, applog.OpSelect, "", err)
		return
	}
	logServed(r, applog.OpSelect, "", len(records))
	writeJSON(w, http.StatusOK, barChartResponse{
		Records:     toSummaries(records),
		Count:       len(records),
		PriceRanges: ranges.Map(),
	})
}

func (s *Server) handlePieChart(w http.ResponseWriter, r *http.Request) {
	records, counts, err := s.stats.CategoryCounts(r.Context(), r.PathValue("monthName"))
	if err != nil {
		writeServiceError(w, r, applog.OpSelect, "", err)
		return
	}
	logServed(r, applog.OpSelect, "", len(records))
	writeJSON(w, http.StatusOK, pieChartResponse{
		Records:        toSummaries(records),
		Count:          len(records),
		CategoryCounts: counts,
	})
}

// handleStatistic serves every view computed from one selection.
func (s *Server) handleStatistic(w http.ResponseWriter, r *http.Request) {
	report, err := s.stats.Report(r.Context(), r.PathValue("monthName"))
	if err != nil {
		writeServiceError(w, r, applog.OpReport, "", err)
		return
	}
	logServed(r, applog.OpReport, "", len(report.Records))
	writeJSON(w, http.StatusOK, statisticResponse{
		Records:           toSummaries(report.Records),
		Count:             report.Totals.Count,
		TotalSaleAmount:   json.Number(report.Totals.TotalSaleAmount.String()),
		TotalSoldItems:    report.Totals.TotalSoldItems,
		TotalNotSoldItems: report.Totals.TotalNotSoldItems,
		PriceRanges:       report.PriceRanges.Map(),
		CategoryCounts:    report.CategoryCounts,
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.pinger == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()
	if err := s.pinger.Ping(ctx); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
