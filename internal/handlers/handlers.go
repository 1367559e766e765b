package handlers

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	aggregatorModule "kevscope/internal/aggregator"
	ingestorModule "kevscope/internal/ingestor"
	queryModule "kevscope/internal/query"
	"kevscope/internal/types"

	"github.com/gofiber/fiber/v2"
	"github.com/jedib0t/go-pretty/table"
	"go.uber.org/zap"
)

type Handler struct {
	Ingestor *ingestorModule.Ingestor
	Logger   *zap.Logger
}

func Initial(ingestor *ingestorModule.Ingestor, logger *zap.Logger) *Handler {
	return &Handler{
		Ingestor: ingestor,
		Logger:   logger,
	}
}

type rowView struct {
	ID        int            `json:"id"`
	Vendor    string         `json:"vendor"`
	Product   string         `json:"product"`
	Name      string         `json:"name"`
	DateAdded string         `json:"dateAdded"`
	CWEs      string         `json:"cwes"`
	RiskTier  types.RiskTier `json:"riskTier"`
	Link      string         `json:"link"`
}

type listView struct {
	Rows          []rowView `json:"rows"`
	MatchedCount  int       `json:"matchedCount"`
	Total         int       `json:"total"`
	ActiveFilters int       `json:"activeFilters"`
	FetchedAt     string    `json:"fetchedAt"`
}

type metricsView struct {
	types.MetricsSnapshot
	FetchedAt string `json:"fetchedAt"`
}

func (h *Handler) VulnerabilitiesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		criteria := criteriaFromQuery(c)
		limit := c.QueryInt("limit", 10)

		records, fetchedAt := h.Ingestor.Snapshot()
		result := queryModule.Apply(records, criteria, limit, time.Now())

		rows := make([]rowView, 0, len(result.Matched))
		for idx, record := range result.Matched {
			rows = append(rows, rowView{
				ID:        idx + 1,
				Vendor:    record.Vendor,
				Product:   record.Product,
				Name:      record.Name,
				DateAdded: record.DateAdded,
				CWEs:      record.CWEText(),
				RiskTier:  record.RiskTier,
				Link:      nvdLink(record.ID),
			})
		}

		return c.Status(fiber.StatusOK).JSON(listView{
			Rows:          rows,
			MatchedCount:  result.MatchedCount,
			Total:         len(records),
			ActiveFilters: criteria.ActiveCount(),
			FetchedAt:     fetchedAt.Format(time.RFC3339),
		})
	}
}

func (h *Handler) TableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		criteria := criteriaFromQuery(c)
		limit := c.QueryInt("limit", 0)

		records, _ := h.Ingestor.Snapshot()
		result := queryModule.Apply(records, criteria, limit, time.Now())

		return c.Status(fiber.StatusOK).SendString(renderTableResult(result))
	}
}

func (h *Handler) MetricsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		records, fetchedAt := h.Ingestor.Snapshot()
		snapshot := aggregatorModule.Aggregate(records, time.Now())

		return c.Status(fiber.StatusOK).JSON(metricsView{
			MetricsSnapshot: snapshot,
			FetchedAt:       fetchedAt.Format(time.RFC3339),
		})
	}
}

func (h *Handler) RefreshHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := h.Ingestor.Refresh(c.Context()); err != nil {
			h.Logger.Sugar().Errorf("Manual feed refresh failed: %v", err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
		}

		records, _ := h.Ingestor.Snapshot()
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ingested": len(records)})
	}
}

func criteriaFromQuery(c *fiber.Ctx) types.FilterCriteria {
	return types.FilterCriteria{
		Product:   c.Query("product"),
		Vendor:    c.Query("vendor"),
		CVEID:     c.Query("cve"),
		Name:      c.Query("name"),
		CWE:       c.Query("cwe"),
		DateRange: c.Query("dateRange", types.DateRangeAll),
	}
}

func nvdLink(cveID string) string {
	if cveID == "" {
		return "#"
	}
	return fmt.Sprintf("https://nvd.nist.gov/vuln/detail/%s", url.PathEscape(cveID))
}

func renderTableResult(result types.QueryResult) string {
	var buffer bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&buffer)
	t.AppendHeader(table.Row{"#", "Product", "Vendor", "CVE ID", "Date", "Vulnerability", "CWEs", "Risk"})
	style := table.Style{
		Box: table.BoxStyle{
			BottomLeft:       "+",
			BottomRight:      "+",
			BottomSeparator:  "-",
			Left:             "|",
			LeftSeparator:    "+",
			Right:            "|",
			RightSeparator:   "+",
			MiddleHorizontal: "-",
			MiddleSeparator:  "+",
			MiddleVertical:   "|",
			PaddingLeft:      " ",
			PaddingRight:     " ",
			TopLeft:          "+",
			TopRight:         "+",
			TopSeparator:     "-",
			UnfinishedRow:    "+",
		},
		Options: table.Options{
			DrawBorder:      true,
			SeparateColumns: true,
			SeparateHeader:  true,
			SeparateRows:    true,
			SeparateFooter:  true,
		},
	}
	t.SetStyle(style)

	count := 1
	for _, record := range result.Matched {
		var title string
		words := strings.Fields(record.Name)
		if len(words) < 6 {
			title = record.Name
		} else {
			title = fmt.Sprintf("%s %s %s %s %s %s ...", words[0], words[1], words[2], words[3], words[4], words[5])
		}
		t.AppendRow([]interface{}{count, record.Product, record.Vendor, record.ID, record.DateAdded, title, record.CWEText(), record.RiskTier})
		count += 1
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", "Matched", result.MatchedCount})
	t.Render()

	return buffer.String()
}
