// Package testkit generates deterministic synthetic order files for tests.
package testkit

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"
)

// ShoppingGeneratorConfig configures the shopping data generator
type ShoppingGeneratorConfig struct {
	OrderCount    int       `json:"order_count"`
	ProductCount  int       `json:"product_count"`
	MissingRate   float64   `json:"missing_rate"`
	ReturnRate    float64   `json:"return_rate"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Seed          int64     `json:"seed"`
	IncludeHeader bool      `json:"include_header"`
}

// DefaultShoppingConfig returns sensible defaults for shopping data generation
func DefaultShoppingConfig() ShoppingGeneratorConfig {
	return ShoppingGeneratorConfig{
		OrderCount:    500,
		ProductCount:  40,
		MissingRate:   0.05,
		ReturnRate:    0.08,
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC),
		Seed:          42,
		IncludeHeader: true,
	}
}

// ShoppingColumns is the header of every generated file, in order
var ShoppingColumns = []string{
	"order_id", "order_date", "region", "channel", "loyalty_tier",
	"product", "units", "unit_price", "discount", "revenue", "returned",
}

// Columns the dashboard classifies as numerical; units turns into a float
// column once a cell is missing
var ShoppingNumericColumns = []string{"units", "unit_price", "discount", "revenue"}

var (
	regions  = []string{"North", "South", "East", "West"}
	channels = []string{"web", "store", "phone"}
	tiers    = []string{"bronze", "silver", "gold"}
)

// ShoppingDataGenerator generates realistic e-commerce order rows
type ShoppingDataGenerator struct {
	config ShoppingGeneratorConfig
	rng    *rand.Rand
}

// NewShoppingDataGenerator creates a new shopping data generator
func NewShoppingDataGenerator(config ShoppingGeneratorConfig) *ShoppingDataGenerator {
	if config.ProductCount <= 0 {
		config.ProductCount = 1
	}
	if !config.EndDate.After(config.StartDate) {
		config.EndDate = config.StartDate.Add(24 * time.Hour)
	}
	return &ShoppingDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateRows returns one record per order; missing cells are empty strings
func (g *ShoppingDataGenerator) GenerateRows() [][]string {
	rows := make([][]string, 0, g.config.OrderCount)
	for i := 0; i < g.config.OrderCount; i++ {
		rows = append(rows, g.order(i))
	}
	return rows
}

// GenerateCSV renders the rows as a CSV document
func (g *ShoppingDataGenerator) GenerateCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if g.config.IncludeHeader {
		if err := w.Write(ShoppingColumns); err != nil {
			return nil, err
		}
	}
	if err := w.WriteAll(g.GenerateRows()); err != nil {
		return nil, fmt.Errorf("failed to write orders: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *ShoppingDataGenerator) order(i int) []string {
	region := regions[g.rng.Intn(len(regions))]
	channel := g.weightedChannel()
	product := g.rng.Intn(g.config.ProductCount)

	units := 1 + g.rng.Intn(6)
	// product ids map to a stable base price so unit_price and revenue correlate
	price := 5 + float64(product%20)*2.5 + g.rng.NormFloat64()*0.75
	price = math.Max(1, math.Round(price*100)/100)

	discount := 0.0
	if channel == "web" && g.rng.Float64() < 0.4 {
		discount = []float64{0.05, 0.1, 0.15}[g.rng.Intn(3)]
	}
	revenue := math.Round(float64(units)*price*(1-discount)*100) / 100

	tier := ""
	if g.rng.Float64() < 0.7 {
		tier = tiers[g.rng.Intn(len(tiers))]
	}

	row := []string{
		fmt.Sprintf("order_%05d", i+1),
		g.randomTimeInRange().Format("2006-01-02"),
		region,
		channel,
		tier,
		fmt.Sprintf("product_%03d", product+1),
		g.maybe(strconv.Itoa(units)),
		g.maybe(strconv.FormatFloat(price, 'f', 2, 64)),
		g.maybe(strconv.FormatFloat(discount, 'f', 2, 64)),
		g.maybe(strconv.FormatFloat(revenue, 'f', 2, 64)),
		strconv.FormatBool(g.rng.Float64() < g.config.ReturnRate),
	}
	return row
}

// weightedChannel favors web orders the way real shops see them
func (g *ShoppingDataGenerator) weightedChannel() string {
	switch r := g.rng.Float64(); {
	case r < 0.6:
		return channels[0]
	case r < 0.9:
		return channels[1]
	default:
		return channels[2]
	}
}

// maybe blanks value with the configured missing rate
func (g *ShoppingDataGenerator) maybe(value string) string {
	if g.rng.Float64() < g.config.MissingRate {
		return ""
	}
	return value
}

func (g *ShoppingDataGenerator) randomTimeInRange() time.Time {
	span := g.config.EndDate.Sub(g.config.StartDate)
	return g.config.StartDate.Add(time.Duration(g.rng.Int63n(int64(span))))
}
