package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"garden-planner/internal/export"
	"garden-planner/internal/garden"
	"garden-planner/internal/metrics"
	"garden-planner/internal/planner"
	"garden-planner/internal/shopping"
)

const helpText = `🌱 *Garden planner*

/plans - list plans
/new W H [CM] title - create a plan and switch to it
/use ID - switch to a plan (id, id prefix or title)
/show - show the current plan
/veggies - list vegetables
/select VEG - choose the vegetable for /place
/place X Y [VEG] - plant a vegetable
/remove X Y - clear a cell
/move X1 Y1 X2 Y2 - move a vegetable
/toggle X Y - switch between bed and pathway
/resize W H - resize the plan
/summary - area, seedlings and fertilizer
/list - shopping list
/dup - duplicate the current plan
/delete - delete the current plan`

const noPlanText = "No plan selected. Use /plans and /use ID, or /new."

var errUsage = errors.New("usage")

// Reply is one outgoing chat message.
type Reply struct {
	Text     string
	Markdown bool
}

func md(format string, args ...any) Reply {
	return Reply{Text: fmt.Sprintf(format, args...), Markdown: true}
}

func plain(text string) Reply {
	return Reply{Text: text}
}

// UsageReporter reads the stored metrics shown by /metrics.
type UsageReporter interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
	GetOperationCounts(ctx context.Context, days int) ([]metrics.OperationCount, error)
}

// Commands turns chat commands into planner calls. It knows nothing about
// the Telegram transport.
type Commands struct {
	planner  *planner.Planner
	sessions SessionStore
	usage    UsageReporter
	health   func() metrics.SysHealth
	adminID  int64
	logger   *zap.Logger
}

// NewCommands creates a command handler. usage and health may be nil.
func NewCommands(p *planner.Planner, sessions SessionStore, usage UsageReporter, health func() metrics.SysHealth, adminID int64, logger *zap.Logger) *Commands {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Commands{
		planner:  p,
		sessions: sessions,
		usage:    usage,
		health:   health,
		adminID:  adminID,
		logger:   logger,
	}
}

// request is one parsed message with the sender's chat state.
type request struct {
	ctx    context.Context
	userID int64
	args   []string
	state  ChatState
}

func (r *request) rest(from int) string {
	if from >= len(r.args) {
		return ""
	}
	return strings.Join(r.args[from:], " ")
}

// parseCommand splits "/cmd@bot a b" into "cmd" and its arguments.
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}
	name := strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name), fields[1:]
}

// Handle runs one message and returns the replies to send.
func (c *Commands) Handle(ctx context.Context, userID int64, text string) []Reply {
	name, args := parseCommand(text)
	if name == "" {
		return []Reply{md("%s", helpText)}
	}

	key := strconv.FormatInt(userID, 10)
	st, err := c.sessions.Load(ctx, key)
	if err != nil {
		c.logger.Error("failed to load chat session", zap.Int64("user_id", userID), zap.Error(err))
	}
	req := &request{ctx: ctx, userID: userID, args: args, state: st}

	replies, err := c.dispatch(name, req)
	if err != nil {
		return []Reply{c.errorReply(name, err)}
	}

	if req.state != st {
		if err := c.sessions.Save(ctx, key, req.state); err != nil {
			c.logger.Error("failed to save chat session", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
	return replies
}

func (c *Commands) dispatch(name string, r *request) ([]Reply, error) {
	switch name {
	case "start", "help":
		return []Reply{md("%s", helpText)}, nil
	case "plans":
		return c.plans(r), nil
	case "new":
		return c.newPlan(r)
	case "use":
		return c.use(r)
	case "show":
		return c.show(r)
	case "veggies":
		return c.veggies(), nil
	case "select":
		return c.selectVegetable(r)
	case "place":
		return c.place(r)
	case "remove":
		return c.remove(r)
	case "move":
		return c.move(r)
	case "toggle":
		return c.toggle(r)
	case "resize":
		return c.resize(r)
	case "summary":
		return c.summary(r)
	case "list":
		return c.shoppingList(r)
	case "dup":
		return c.duplicate(r)
	case "delete":
		return c.deletePlan(r)
	case "metrics":
		return c.metrics(r)
	default:
		return []Reply{plain("Unknown command /" + name + ". Send /help for the list.")}, nil
	}
}

func (c *Commands) errorReply(name string, err error) Reply {
	switch {
	case errors.Is(err, errUsage):
		return plain(err.Error())
	case errors.Is(err, planner.ErrInvalidDimensions),
		errors.Is(err, planner.ErrInvalidCellSize),
		errors.Is(err, planner.ErrEmptyTitle):
		return plain("❌ " + err.Error())
	default:
		c.logger.Error("chat command failed", zap.String("command", name), zap.Error(err))
		return plain("❌ Something went wrong, please try again.")
	}
}

func usage(text string) error {
	return fmt.Errorf("%w: %s", errUsage, text)
}

// current returns the chat's plan, or nil when none is selected or it was
// deleted elsewhere.
func (c *Commands) current(r *request) *garden.Plan {
	if r.state.PlanID == "" {
		return nil
	}
	plan, ok := c.planner.GetPlan(r.state.PlanID)
	if !ok {
		r.state.PlanID = ""
		return nil
	}
	return plan
}

func (c *Commands) planReply(plan *garden.Plan) Reply {
	statuses, _ := c.planner.CompanionStatuses(plan.ID)
	return Reply{Text: export.PlanMarkdown(plan, c.planner.Catalog(), statuses), Markdown: true}
}

func (c *Commands) plans(r *request) []Reply {
	list := c.planner.ListPlans()
	if len(list) == 0 {
		return []Reply{plain("No plans yet. Create one with /new 6 6 My garden")}
	}
	var sb strings.Builder
	sb.WriteString("🗂 *Plans*\n")
	for _, p := range list {
		marker := "•"
		if p.ID == r.state.PlanID {
			marker = "👉"
		}
		fmt.Fprintf(&sb, "%s `%s` %s (%dx%d, %d planted)\n",
			marker, shortID(p.ID), export.EscapeMarkdown(p.Title), p.Width, p.Height, p.Planted)
	}
	return []Reply{md("%s", sb.String())}
}

func (c *Commands) newPlan(r *request) ([]Reply, error) {
	const text = "/new W H [CM] title"
	if len(r.args) < 3 {
		return nil, usage(text)
	}
	w, err1 := strconv.Atoi(r.args[0])
	h, err2 := strconv.Atoi(r.args[1])
	if err1 != nil || err2 != nil {
		return nil, usage(text)
	}
	cm, titleFrom := 0, 2
	if n, err := strconv.Atoi(r.args[2]); err == nil {
		cm, titleFrom = n, 3
	}

	plan, err := c.planner.AddPlan(r.ctx, r.rest(titleFrom), w, h, cm)
	if err != nil {
		return nil, err
	}
	r.state.PlanID = plan.ID
	return []Reply{md("✅ Created *%s*", export.EscapeMarkdown(plan.Title)), c.planReply(plan)}, nil
}

func (c *Commands) use(r *request) ([]Reply, error) {
	if len(r.args) == 0 {
		return nil, usage("/use ID")
	}
	plan, ok := c.planner.FindPlan(r.rest(0))
	if !ok {
		return []Reply{plain("Plan not found: " + r.rest(0))}, nil
	}
	r.state.PlanID = plan.ID
	return []Reply{c.planReply(plan)}, nil
}

func (c *Commands) show(r *request) ([]Reply, error) {
	plan := c.current(r)
	if plan == nil {
		return []Reply{plain(noPlanText)}, nil
	}
	return []Reply{c.planReply(plan)}, nil
}

func (c *Commands) veggies() []Reply {
	var sb strings.Builder
	sb.WriteString("🥕 *Vegetables*\n")
	for _, v := range c.planner.Catalog().All() {
		fmt.Fprintf(&sb, "• %s `%s` (%g cm)\n", export.EscapeMarkdown(v.Label()), v.ID, v.SizeCm)
	}
	return []Reply{md("%s", sb.String())}
}

func (c *Commands) selectVegetable(r *request) ([]Reply, error) {
	if len(r.args) == 0 {
		return nil, usage("/select VEG")
	}
	v, ok := c.planner.Catalog().Find(r.rest(0))
	if !ok {
		return []Reply{plain("Unknown vegetable " + r.rest(0) + ". See /veggies")}, nil
	}
	r.state.VegetableID = v.ID
	return []Reply{plain("Selected " + v.Label())}, nil
}

// cellArgs reads an "X Y" pair starting at args[i].
func cellArgs(args []string, i int) (string, bool) {
	if len(args) < i+2 {
		return "", false
	}
	x, err1 := strconv.Atoi(args[i])
	y, err2 := strconv.Atoi(args[i+1])
	if err1 != nil || err2 != nil {
		return "", false
	}
	return garden.CellID(x, y), true
}

// edit runs one editor operation on the current plan and replies with the
// result.
func (c *Commands) edit(r *request, done string, op func(planID string) (*garden.Plan, error)) ([]Reply, error) {
	before := c.current(r)
	if before == nil {
		return []Reply{plain(noPlanText)}, nil
	}
	after, err := op(before.ID)
	if err != nil {
		return nil, err
	}
	if after == nil {
		r.state.PlanID = ""
		return []Reply{plain(noPlanText)}, nil
	}
	if shopping.Fingerprint(before) == shopping.Fingerprint(after) {
		return []Reply{plain("⚠️ Nothing changed"), c.planReply(after)}, nil
	}
	return []Reply{plain("✅ " + done), c.planReply(after)}, nil
}

func (c *Commands) place(r *request) ([]Reply, error) {
	cell, ok := cellArgs(r.args, 0)
	if !ok {
		return nil, usage("/place X Y [VEG]")
	}
	vegID := r.state.VegetableID
	if len(r.args) > 2 {
		v, ok := c.planner.Catalog().Find(r.rest(2))
		if !ok {
			return []Reply{plain("Unknown vegetable " + r.rest(2) + ". See /veggies")}, nil
		}
		vegID = v.ID
	}
	if vegID == "" {
		return []Reply{plain("No vegetable selected. Use /select VEG or /place X Y VEG.")}, nil
	}
	return c.edit(r, "Planted at "+cell, func(planID string) (*garden.Plan, error) {
		return c.planner.Place(r.ctx, planID, cell, vegID)
	})
}

func (c *Commands) remove(r *request) ([]Reply, error) {
	cell, ok := cellArgs(r.args, 0)
	if !ok {
		return nil, usage("/remove X Y")
	}
	return c.edit(r, "Cleared "+cell, func(planID string) (*garden.Plan, error) {
		return c.planner.Remove(r.ctx, planID, cell)
	})
}

func (c *Commands) move(r *request) ([]Reply, error) {
	from, ok1 := cellArgs(r.args, 0)
	to, ok2 := cellArgs(r.args, 2)
	if !ok1 || !ok2 {
		return nil, usage("/move X1 Y1 X2 Y2")
	}
	return c.edit(r, "Moved "+from+" to "+to, func(planID string) (*garden.Plan, error) {
		return c.planner.Move(r.ctx, planID, from, to)
	})
}

func (c *Commands) toggle(r *request) ([]Reply, error) {
	cell, ok := cellArgs(r.args, 0)
	if !ok {
		return nil, usage("/toggle X Y")
	}
	return c.edit(r, "Toggled "+cell, func(planID string) (*garden.Plan, error) {
		return c.planner.ToggleCellType(r.ctx, planID, cell)
	})
}

func (c *Commands) resize(r *request) ([]Reply, error) {
	if len(r.args) < 2 {
		return nil, usage("/resize W H")
	}
	w, err1 := strconv.Atoi(r.args[0])
	h, err2 := strconv.Atoi(r.args[1])
	if err1 != nil || err2 != nil {
		return nil, usage("/resize W H")
	}
	return c.edit(r, fmt.Sprintf("Resized to %dx%d", w, h), func(planID string) (*garden.Plan, error) {
		return c.planner.Resize(r.ctx, planID, w, h)
	})
}

func (c *Commands) summary(r *request) ([]Reply, error) {
	plan := c.current(r)
	if plan == nil {
		return []Reply{plain(noPlanText)}, nil
	}
	s, ok := c.planner.Summarize(plan.ID)
	if !ok {
		return []Reply{plain(noPlanText)}, nil
	}
	return []Reply{{Text: export.SummaryMarkdown(plan.Title, *s), Markdown: true}}, nil
}

func (c *Commands) shoppingList(r *request) ([]Reply, error) {
	plan := c.current(r)
	if plan == nil {
		return []Reply{plain(noPlanText)}, nil
	}
	s, ok := c.planner.Summarize(plan.ID)
	if !ok {
		return []Reply{plain(noPlanText)}, nil
	}
	return []Reply{plain(export.ShoppingListText(plan.Title, *s))}, nil
}

func (c *Commands) duplicate(r *request) ([]Reply, error) {
	plan := c.current(r)
	if plan == nil {
		return []Reply{plain(noPlanText)}, nil
	}
	dup, err := c.planner.DuplicatePlan(r.ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	if dup == nil {
		return []Reply{plain(noPlanText)}, nil
	}
	r.state.PlanID = dup.ID
	return []Reply{md("✅ Switched to *%s*", export.EscapeMarkdown(dup.Title)), c.planReply(dup)}, nil
}

func (c *Commands) deletePlan(r *request) ([]Reply, error) {
	plan := c.current(r)
	if plan == nil {
		return []Reply{plain(noPlanText)}, nil
	}
	if _, err := c.planner.DeletePlan(r.ctx, plan.ID); err != nil {
		return nil, err
	}
	r.state.PlanID = ""
	return []Reply{plain("🗑 Deleted " + plan.Title)}, nil
}

func (c *Commands) metrics(r *request) ([]Reply, error) {
	if c.adminID == 0 || r.userID != c.adminID {
		return []Reply{md("⛔ *Access Denied*: Admin only.")}, nil
	}
	if c.usage == nil {
		return []Reply{plain("Metrics are not available.")}, nil
	}

	usage, err := c.usage.GetDailyUsage(r.ctx, 7)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch llm usage: %w", err)
	}
	ops, err := c.usage.GetOperationCounts(r.ctx, 7)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch operation counts: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("✏️ *Plan Operations (7 days)*\n")
	if len(ops) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, o := range ops {
		fmt.Fprintf(&sb, "• %s: %d (%d applied, avg %.0fµs)\n", export.EscapeMarkdown(o.Operation), o.Total, o.Applied, o.AvgLatencyUS)
	}

	sb.WriteString("\n🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		fmt.Fprintf(&sb, "• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution)
	}

	if c.health != nil {
		health := c.health()
		sb.WriteString("\n🧠 *System Health*\n")
		fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB)
		fmt.Fprintf(&sb, "• Goroutines: %d\n", health.Goroutines)
		fmt.Fprintf(&sb, "• Disk Data: %s (db %s, plans file %s, catalog %s)\n",
			health.DataDiskSize, health.Storage.Database, health.Storage.PlansFile, health.Storage.Catalog)
		fmt.Fprintf(&sb, "• Garden: %d plans, %d planted cells, %d vegetables\n",
			health.Garden.Plans, health.Garden.PlantedCells, health.Garden.Vegetables)
	}
	return []Reply{md("%s", sb.String())}, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
