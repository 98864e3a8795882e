package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/BioTerm-Annotator/internal/annotation"
	"github.com/turtacn/BioTerm-Annotator/internal/application/annotator"
	"github.com/turtacn/BioTerm-Annotator/internal/interfaces/http/middleware"
	"github.com/turtacn/BioTerm-Annotator/pkg/errors"
	"github.com/turtacn/BioTerm-Annotator/pkg/types"
)

// AnnotateHandler serves the annotation endpoints.
type AnnotateHandler struct {
	service annotator.Service
}

// NewAnnotateHandler creates the handler over the application service.
func NewAnnotateHandler(service annotator.Service) *AnnotateHandler {
	return &AnnotateHandler{service: service}
}

// Annotate handles POST /api/v1/annotate.  The body's texts field accepts a
// single string or an array; the response data is always an array of results
// corresponding positionally to the inputs.
func (h *AnnotateHandler) Annotate(c *gin.Context) {
	var req types.AnnotateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.New(errors.ErrCodeBadRequest, "invalid request body").WithCause(err))
		return
	}
	if len(req.Texts) == 0 {
		writeError(c, errors.New(errors.ErrCodeAnnotationEmptyTerm, "texts must contain at least one term"))
		return
	}

	requestID := middleware.GetRequestID(c)

	// Single-term requests go through the cached single-term path.
	if len(req.Texts) == 1 {
		res, err := h.service.Annotate(c.Request.Context(), &annotator.AnnotateInput{
			RequestID:     requestID,
			Text:          req.Texts[0],
			Domain:        req.Domain,
			Ontologies:    req.Ontologies,
			UseFallback:   req.UseFallback,
			MinConfidence: req.MinConfidence,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		writeSuccess(c, http.StatusOK, toAPIResults([]*annotation.Result{res}))
		return
	}

	results, err := h.service.AnnotateBatch(c.Request.Context(), &annotator.BatchInput{
		RequestID:     requestID,
		Texts:         req.Texts,
		Domain:        req.Domain,
		Ontologies:    req.Ontologies,
		UseFallback:   req.UseFallback,
		MinConfidence: req.MinConfidence,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, toAPIResults(results))
}

// Extract handles POST /api/v1/extract.
func (h *AnnotateHandler) Extract(c *gin.Context) {
	var req types.ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.New(errors.ErrCodeBadRequest, "invalid request body").WithCause(err))
		return
	}

	entities, err := h.service.ExtractAnnotate(c.Request.Context(), &annotator.ExtractInput{
		RequestID:     middleware.GetRequestID(c),
		Text:          req.Text,
		Domains:       req.Domains,
		UseFallback:   req.UseFallback,
		MinConfidence: req.MinConfidence,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, types.ExtractResult{
		Text:     req.Text,
		Entities: toAPIEntities(entities),
	})
}

// Domains handles GET /api/v1/domains.
func (h *AnnotateHandler) Domains(c *gin.Context) {
	infos := h.service.Domains()
	out := make([]types.DomainInfo, 0, len(infos))
	for _, d := range infos {
		out = append(out, types.DomainInfo{Domain: d.Domain, Ontologies: d.Ontologies})
	}
	writeSuccess(c, http.StatusOK, out)
}
