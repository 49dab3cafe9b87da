package handler

import (
	"asset-management-api/internal/model"
	"asset-management-api/internal/repository"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// assetCSVHeader is the fixed column order of the asset export.
var assetCSVHeader = []string{
	"id", "type", "brand", "model", "serialNumber", "status", "assignedEmployeeId",
	"purchaseDate", "purchasePrice", "warrantyExpiry", "lifespanMonths", "notes",
	"createdAt", "updatedAt",
}

// ExportAssetsHandler streams the filtered asset list as CSV.
func (h *AssetHandler) ExportAssetsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	result, err := h.Assets.ListAssets(ctx, assetFilterFromQuery(r), repository.PaginationParams{})
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "export assets")
		return
	}

	filename := fmt.Sprintf("assets-%s.csv", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	if err := WriteAssetsCSV(w, result.Items); err != nil {
		h.Logger.WithError(err).Error("failed to write asset export")
	}
}

// WriteAssetsCSV writes a header row followed by one row per asset. Fields
// containing commas or quotes are quoted; missing values are empty.
func WriteAssetsCSV(w io.Writer, assets []model.Asset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(assetCSVHeader); err != nil {
		return err
	}
	for _, a := range assets {
		if err := cw.Write(assetCSVRow(a)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func assetCSVRow(a model.Asset) []string {
	return []string{
		a.ID,
		string(a.Type),
		a.Brand,
		a.Model,
		a.SerialNumber,
		string(a.Status),
		stringOrEmpty(a.AssignedEmployeeID),
		dateOrEmpty(a.PurchaseDate),
		floatOrEmpty(a.PurchasePrice),
		dateOrEmpty(a.WarrantyExpiry),
		intOrEmpty(a.LifespanMonths),
		a.Notes,
		timestampOrEmpty(a.CreatedAt),
		timestampOrEmpty(a.UpdatedAt),
	}
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dateOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func floatOrEmpty(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', 2, 64)
}

func intOrEmpty(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}

func timestampOrEmpty(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
