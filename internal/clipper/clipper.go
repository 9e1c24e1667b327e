package clipper

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"text/template"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"garden-planner/internal/catalog"
	"garden-planner/internal/llm"
	"garden-planner/internal/shared"
)

//go:embed vegetable_prompt.md
var vegetablePrompt string

var promptTemplate = template.Must(template.New("vegetable").Parse(vegetablePrompt))

// maxContentChars caps the page text sent to the model.
const maxContentChars = 12000

// ErrNoVegetable is returned when the page does not describe a plant.
var ErrNoVegetable = errors.New("no vegetable found on page")

// Store persists clipped vegetables.
type Store interface {
	Upsert(v catalog.Vegetable) error
}

// Clipper handles fetching pages and turning them into catalog entries.
type Clipper struct {
	textGen    llm.TextGenerator
	store      Store
	catalog    *catalog.Catalog
	httpClient *http.Client
}

// ExtractedVegetable represents the data structured by the AI.
type ExtractedVegetable struct {
	Found          bool     `json:"found"`
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Icon           string   `json:"icon"`
	SizeCm         float64  `json:"sizeCm"`
	GoodCompanions []string `json:"goodCompanions"`
	BadCompanions  []string `json:"badCompanions"`
	PlantingPeriod string   `json:"plantingPeriod"`
	HarvestPeriod  string   `json:"harvestPeriod"`
	Description    string   `json:"description"`
	Tips           string   `json:"tips"`
}

// Result is a clipped vegetable and the cost of extracting it.
type Result struct {
	Vegetable catalog.Vegetable
	Meta      shared.AgentMeta
}

// NewClipper creates a new Clipper instance. cat is used to resolve
// companion names to known ids.
func NewClipper(textGen llm.TextGenerator, store Store, cat *catalog.Catalog) *Clipper {
	return &Clipper{
		textGen:    textGen,
		store:      store,
		catalog:    cat,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// ClipURL fetches the URL, extracts a vegetable using AI, and saves it to
// the store. Meta is filled in whenever the model was called, also on
// error, so callers can record token usage.
func (c *Clipper) ClipURL(ctx context.Context, url string) (Result, error) {
	content, err := c.fetchAndCleanHTML(ctx, url)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch content: %w", err)
	}

	prompt, err := buildPrompt(url, content, c.catalog.IDs())
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	resp, err := c.textGen.GenerateContent(ctx, prompt)
	meta := shared.AgentMeta{AgentName: "Clipper", Usage: resp.Usage, Latency: time.Since(start)}
	if err != nil {
		return Result{Meta: meta}, fmt.Errorf("ai extraction failed: %w", err)
	}

	var extracted ExtractedVegetable
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Content)), &extracted); err != nil {
		return Result{Meta: meta}, fmt.Errorf("failed to parse AI response: %w. Response: %s", err, resp.Content)
	}
	if !extracted.Found {
		return Result{Meta: meta}, ErrNoVegetable
	}

	veg := c.normalize(extracted)
	if err := veg.Validate(); err != nil {
		return Result{Meta: meta}, err
	}
	if err := c.store.Upsert(veg); err != nil {
		return Result{Meta: meta}, fmt.Errorf("failed to save vegetable: %w", err)
	}
	return Result{Vegetable: veg, Meta: meta}, nil
}

func (c *Clipper) fetchAndCleanHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, noscript, form, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	if len(text) > maxContentChars {
		text = text[:maxContentChars]
	}
	return text, nil
}

func buildPrompt(url, content string, knownIDs []string) (string, error) {
	var buf bytes.Buffer
	err := promptTemplate.Execute(&buf, struct {
		URL      string
		Content  string
		KnownIDs []string
	}{URL: url, Content: content, KnownIDs: knownIDs})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}

func (c *Clipper) normalize(e ExtractedVegetable) catalog.Vegetable {
	id := Slug(e.ID)
	if id == "" {
		id = Slug(e.Name)
	}
	return catalog.Vegetable{
		ID:             id,
		Name:           strings.TrimSpace(e.Name),
		Icon:           strings.TrimSpace(e.Icon),
		SizeCm:         e.SizeCm,
		GoodCompanions: c.companionIDs(id, e.GoodCompanions),
		BadCompanions:  c.companionIDs(id, e.BadCompanions),
		PlantingPeriod: strings.TrimSpace(e.PlantingPeriod),
		HarvestPeriod:  strings.TrimSpace(e.HarvestPeriod),
		Description:    strings.TrimSpace(e.Description),
		Tips:           strings.TrimSpace(e.Tips),
	}
}

// companionIDs maps model output to catalog ids, dropping unknown names,
// duplicates and self references.
func (c *Clipper) companionIDs(self string, names []string) []string {
	out := []string{}
	seen := map[string]bool{self: true}
	for _, name := range names {
		v, ok := c.catalog.Find(name)
		if !ok {
			v, ok = c.catalog.Find(Slug(name))
		}
		if !ok || seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		out = append(out, v.ID)
	}
	return out
}

// Slug turns a display name into a lowercase ASCII id.
func Slug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		folded = strings.ToLower(s)
	}

	var sb strings.Builder
	dash := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			dash = false
		case sb.Len() > 0 && !dash:
			sb.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
