package rest

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/p-n-ai/curricuforge/internal/curriculum"
	"github.com/p-n-ai/curricuforge/internal/report"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeYAML = "application/yaml"
)

// ExportPDF handles GET /api/curricula/{id}/export.pdf.
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	doc, err := h.engine.Document(pathVar(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	body, err := report.RenderDocument(h.paginator, doc)
	if err != nil {
		writeFailure(w, err)
		return
	}
	h.download(w, r, doc.ID, "pdf", report.DocumentFileName(doc.Title), contentTypePDF, body)
}

// ExportWorkbook handles GET /api/curricula/{id}/export.xlsx.
func (h *Handler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	doc, err := h.engine.Document(pathVar(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, []*curriculum.Document{doc}); err != nil {
		writeFailure(w, err)
		return
	}
	h.download(w, r, doc.ID, "xlsx", report.WorkbookFileName(doc.Title), contentTypeXLSX, buf.Bytes())
}

// ExportYAML handles GET /api/curricula/{id}/export.yaml. The file can be
// dropped into the seed directory.
func (h *Handler) ExportYAML(w http.ResponseWriter, r *http.Request) {
	doc, err := h.engine.Document(pathVar(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	var buf bytes.Buffer
	if err := curriculum.EncodeYAML(&buf, doc); err != nil {
		writeFailure(w, err)
		return
	}
	h.download(w, r, doc.ID, "yaml", report.YAMLFileName(doc.Title), contentTypeYAML, buf.Bytes())
}

// ExportPortfolio handles GET /api/export.pdf: every curriculum behind a
// cover page.
func (h *Handler) ExportPortfolio(w http.ResponseWriter, r *http.Request) {
	history := h.engine.History()
	if len(history) == 0 {
		writeError(w, http.StatusNotFound, emptyHistoryMessage)
		return
	}
	now := h.now()
	body, err := report.RenderCollection(h.paginator, history, now)
	if err != nil {
		writeFailure(w, err)
		return
	}
	h.download(w, r, "", "portfolio_pdf", report.PortfolioFileName(now), contentTypePDF, body)
}

// ExportPortfolioWorkbook handles GET /api/export.xlsx.
func (h *Handler) ExportPortfolioWorkbook(w http.ResponseWriter, r *http.Request) {
	history := h.engine.History()
	if len(history) == 0 {
		writeError(w, http.StatusNotFound, emptyHistoryMessage)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, history); err != nil {
		writeFailure(w, err)
		return
	}
	name := fmt.Sprintf("CurricuForge_Progress_%d.xlsx", h.now().UnixMilli())
	h.download(w, r, "", "portfolio_xlsx", name, contentTypeXLSX, buf.Bytes())
}

const emptyHistoryMessage = "no curricula to export"

// download writes an attachment with a content ETag. A matching
// If-None-Match gets 304 and is not recorded as an export.
func (h *Handler) download(w http.ResponseWriter, r *http.Request, docID, format, filename, contentType string, body []byte) {
	etag := report.Fingerprint(body)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		return
	}
	h.engine.RecordExport(docID, format)
}
