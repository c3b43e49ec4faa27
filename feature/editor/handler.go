package editor

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/jarmstrongdbrx/data-entry-app/core/catalog"
	"github.com/jarmstrongdbrx/data-entry-app/core/logger"
	"github.com/jarmstrongdbrx/data-entry-app/core/reconcile"
	"github.com/jarmstrongdbrx/data-entry-app/core/table"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the table editor.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the editor routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/tables")
	group.Get("/", h.HandleListTables)
	group.Get("/:table", h.HandleReadTable)
	group.Post("/:table/save", h.HandleSaveChanges)
	group.Get("/:table/archives", h.HandleListArchives)
	group.Get("/:table/archives/:name", h.HandleDownloadArchive)
}

// saveRequest is the body of a save call: the operator's full working copy.
type saveRequest struct {
	Rows []map[string]any `json:"rows"`
}

// tableResponse is the payload of a table read and of the post-save refresh.
type tableResponse struct {
	Table      string      `json:"table"`
	PrimaryKey []string    `json:"primary_key"`
	Columns    []string    `json:"columns"`
	Rows       []table.Row `json:"rows"`
}

// saveResponse reports the applied counts and the refreshed table state.
type saveResponse struct {
	Result reconcile.Result `json:"result"`
	State  tableResponse    `json:"state"`
}

func toTableResponse(desc *catalog.Descriptor, snap *Snapshot) tableResponse {
	resp := tableResponse{
		Table:      desc.Name,
		PrimaryKey: desc.PrimaryKey,
		Rows:       snap.Rows,
	}
	if resp.Rows == nil {
		resp.Rows = []table.Row{}
	}
	for _, c := range snap.Columns {
		resp.Columns = append(resp.Columns, c.Name)
	}
	return resp
}

// HandleListTables returns every editable table with its primary key.
// @Summary List Tables
// @Description List all tables in the configured schema that declare a primary key.
// @Tags tables
// @Produce json
// @Success 200 {array} catalog.Descriptor "Editable tables"
// @Failure 502 {object} map[string]string "Schema unreachable"
// @Router /tables [get]
func (h *Handler) HandleListTables(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	descs, err := h.service.ListEditable(c.Context())
	if err != nil {
		l.Error("Table listing failed", zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(descs)
}

// HandleReadTable returns a fresh snapshot of one table.
// @Summary Read Table
// @Description Read the full current contents of a table.
// @Tags tables
// @Produce json
// @Param table path string true "Table name"
// @Success 200 {object} tableResponse "Table snapshot"
// @Failure 422 {object} map[string]string "Table has no primary key"
// @Router /tables/{table} [get]
func (h *Handler) HandleReadTable(c *fiber.Ctx) error {
	name := c.Params("table")
	l := logger.WithRayID(h.service.logger, c)

	desc, snap, err := h.service.Read(c.Context(), name)
	if err != nil {
		l.Error("Table read failed", zap.String("table", name), zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(toTableResponse(desc, snap))
}

// HandleSaveChanges reconciles the submitted working copy into the table.
// @Summary Save Changes
// @Description Diff the submitted rows against the current table state and apply inserts, updates, and deletes in one merge.
// @Tags tables
// @Accept json
// @Produce json
// @Param table path string true "Table name"
// @Param body body saveRequest true "Full working copy of the table"
// @Success 200 {object} saveResponse "Applied counts and refreshed state"
// @Failure 400 {object} map[string]string "Invalid rows (duplicate key, bad value)"
// @Router /tables/{table}/save [post]
func (h *Handler) HandleSaveChanges(c *fiber.Ctx) error {
	name := c.Params("table")
	l := logger.WithRayID(h.service.logger, c)

	// Decode with UseNumber so numeric cells keep their exact digits.
	var req saveRequest
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body: " + err.Error()})
	}

	desc, snap, err := h.service.Read(c.Context(), name)
	if err != nil {
		l.Error("Table read failed", zap.String("table", name), zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	working, err := h.service.CoerceRows(snap, req.Rows)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	res, fresh, err := h.service.Save(c.Context(), name, working)
	if err != nil {
		l.Error("Save failed", zap.String("table", name), zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(saveResponse{Result: res, State: toTableResponse(desc, fresh)})
}

// HandleListArchives lists the archived pre-save snapshots of a table.
// @Summary List Snapshot Archives
// @Description List the archived pre-save snapshots stored for a table.
// @Tags tables
// @Produce json
// @Param table path string true "Table name"
// @Success 200 {array} ArchiveEntry "Archived snapshots"
// @Router /tables/{table}/archives [get]
func (h *Handler) HandleListArchives(c *fiber.Ctx) error {
	name := c.Params("table")
	l := logger.WithRayID(h.service.logger, c)

	entries, err := h.service.ListArchives(c.Context(), name)
	if err != nil {
		l.Error("Archive listing failed", zap.String("table", name), zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(entries)
}

// HandleDownloadArchive streams one archived snapshot document.
// @Summary Download Snapshot Archive
// @Description Download a single archived pre-save snapshot by its object name.
// @Tags tables
// @Produce json
// @Param table path string true "Table name"
// @Param name path string true "Archive object name"
// @Success 200 {object} map[string]any "Archived snapshot document"
// @Router /tables/{table}/archives/{name} [get]
func (h *Handler) HandleDownloadArchive(c *fiber.Ctx) error {
	name := c.Params("table")
	object := c.Params("name")
	l := logger.WithRayID(h.service.logger, c)

	obj, err := h.service.FetchArchive(c.Context(), name, object)
	if err != nil {
		l.Error("Archive download failed",
			zap.String("table", name), zap.String("archive", object), zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	defer obj.Close()

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.SendStream(obj)
}

// statusFor maps the editor's error kinds to HTTP statuses. Validation
// problems are the client's to fix; everything else is on us or the
// warehouse.
func statusFor(err error) int {
	var (
		access *catalog.AccessError
		npk    *catalog.NoPrimaryKeyError
		dup    *reconcile.DuplicateKeyError
		keyVal *reconcile.KeyValueError
		format *table.FormatError
	)
	switch {
	case errors.As(err, &access):
		return fiber.StatusBadGateway
	case errors.As(err, &npk):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &dup), errors.As(err, &keyVal), errors.As(err, &format):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
