package httpapi

import (
	"context"
	"net/http"
	"strings"

	"garden-planner/internal/companion"
	"garden-planner/internal/export"
	"garden-planner/internal/garden"
	"garden-planner/internal/planner"
)

type createPlanRequest struct {
	Title          string `json:"title"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	GridCellSizeCm int    `json:"gridCellSizeCm"`
}

type cellRequest struct {
	CellID      string `json:"cellId"`
	VegetableID string `json:"vegetableId,omitempty"`
}

type moveRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type resizeRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type companionsResponse struct {
	CellID    string               `json:"cellId"`
	Status    companion.Status     `json:"status"`
	Neighbors []companion.Neighbor `json:"neighbors"`
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.planner.ListPlans())
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Width == 0 {
		req.Width = planner.DefaultWidth
	}
	if req.Height == 0 {
		req.Height = planner.DefaultHeight
	}
	plan, err := s.planner.AddPlan(r.Context(), req.Title, req.Width, req.Height, req.GridCellSizeCm)
	if err != nil {
		s.writePlannerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.planner.GetPlan(r.PathValue("id"))
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	var req planner.PlanUpdate
	if !decode(w, r, &req) {
		return
	}
	s.respondPlan(w, r, func(ctx context.Context, id string) (*garden.Plan, error) {
		return s.planner.UpdatePlan(ctx, id, req)
	})
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.planner.DeletePlan(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writePlannerError(w, err)
		return
	}
	if !deleted {
		notFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDuplicatePlan(w http.ResponseWriter, r *http.Request) {
	dup, err := s.planner.DuplicatePlan(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writePlannerError(w, err)
		return
	}
	if dup == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusCreated, dup)
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req cellRequest
	if !decode(w, r, &req) {
		return
	}
	s.respondPlan(w, r, func(ctx context.Context, id string) (*garden.Plan, error) {
		return s.planner.Place(ctx, id, normCell(req.CellID), req.VegetableID)
	})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	var req cellRequest
	if !decode(w, r, &req) {
		return
	}
	s.respondPlan(w, r, func(ctx context.Context, id string) (*garden.Plan, error) {
		return s.planner.Remove(ctx, id, normCell(req.CellID))
	})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !decode(w, r, &req) {
		return
	}
	s.respondPlan(w, r, func(ctx context.Context, id string) (*garden.Plan, error) {
		return s.planner.Move(ctx, id, normCell(req.From), normCell(req.To))
	})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req cellRequest
	if !decode(w, r, &req) {
		return
	}
	s.respondPlan(w, r, func(ctx context.Context, id string) (*garden.Plan, error) {
		return s.planner.ToggleCellType(ctx, id, normCell(req.CellID))
	})
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if !decode(w, r, &req) {
		return
	}
	s.respondPlan(w, r, func(ctx context.Context, id string) (*garden.Plan, error) {
		return s.planner.Resize(ctx, id, req.Width, req.Height)
	})
}

// respondPlan runs a plan operation and writes the resulting plan. Invalid
// cell references are no-ops and still answer 200 with the unchanged plan.
func (s *Server) respondPlan(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id string) (*garden.Plan, error)) {
	plan, err := op(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writePlannerError(w, err)
		return
	}
	if plan == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// normCell accepts "x,y" as well as "x-y". Unparseable ids pass through
// and resolve to no cell.
func normCell(id string) string {
	if x, y, err := garden.ParseCellID(id); err == nil {
		return garden.CellID(x, y)
	}
	return id
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, ok := s.planner.Summarize(r.PathValue("id"))
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCompanions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	cellID := normCell(r.PathValue("cellId"))
	status, ok := s.planner.CompanionStatus(id, cellID)
	if !ok {
		notFound(w)
		return
	}
	neighbors, _ := s.planner.CompanionNeighbors(id, cellID)
	if neighbors == nil {
		neighbors = []companion.Neighbor{}
	}
	writeJSON(w, http.StatusOK, companionsResponse{CellID: cellID, Status: status, Neighbors: neighbors})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	plan, ok := s.planner.GetPlan(id)
	if !ok {
		notFound(w)
		return
	}
	statuses, _ := s.planner.CompanionStatuses(id)
	summary, ok := s.planner.Summarize(id)
	if !ok {
		notFound(w)
		return
	}
	cat := s.planner.Catalog()

	switch format := strings.ToLower(r.URL.Query().Get("format")); format {
	case "", "text":
		body := export.GridText(plan, cat, statuses, export.GridOptions{}) + "\n" +
			export.Legend(*summary) + "\n" + export.SummaryText(plan.Title, *summary)
		writeText(w, "text/plain; charset=utf-8", []byte(body))
	case "list":
		writeText(w, "text/plain; charset=utf-8", []byte(export.ShoppingListText(plan.Title, *summary)))
	case "markdown", "md":
		body := export.PlanMarkdown(plan, cat, statuses) + "\n" + export.SummaryMarkdown(plan.Title, *summary)
		writeText(w, "text/markdown; charset=utf-8", []byte(body))
	case "html":
		page, err := export.PlanHTML(plan, cat, statuses, *summary, s.locale)
		if err != nil {
			s.writePlannerError(w, err)
			return
		}
		writeText(w, "text/html; charset=utf-8", page)
	case "json":
		data, err := export.PlanJSON(plan, statuses, *summary)
		if err != nil {
			s.writePlannerError(w, err)
			return
		}
		writeText(w, "application/json", data)
	default:
		writeError(w, http.StatusBadRequest, "unknown export format "+format)
	}
}

func writeText(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleVegetables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.planner.Catalog().All())
}

type healthResponse struct {
	Status string `json:"status"`
	Plans  int    `json:"plans"`
	System any    `json:"system,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Plans: len(s.planner.ListPlans())}
	if s.health != nil {
		resp.System = s.health()
	}
	writeJSON(w, http.StatusOK, resp)
}
