// Package synthetic produces a seeded, internally consistent demo dataset.
// The same seed and counts always yield the same rows, so fixtures and local
// runs are reproducible.
package synthetic

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/rpalomera/shopmetrics-backend/pkg/db/models"
	"github.com/rpalomera/shopmetrics-backend/pkg/enums"
)

// Options sizes one generated dataset.
type Options struct {
	Seed      int64
	Products  int
	Customers int
	Orders    int
}

// DefaultOptions mirrors the shipped demo dataset.
func DefaultOptions() Options {
	return Options{Seed: 42, Products: 200, Customers: 500, Orders: 2000}
}

// Dataset holds one generated batch, ready to serialize.
type Dataset struct {
	Products   []models.Product
	Customers  []models.Customer
	Orders     []models.Order
	OrderItems []models.OrderItem
	Reviews    []models.Review
}

type catalogEntry struct {
	category      string
	subcategories []string
	minPrice      float64
	maxPrice      float64
}

var catalog = []catalogEntry{
	{"Electronics", []string{"Laptops", "Phones", "Audio", "Accessories"}, 25, 1800},
	{"Home & Kitchen", []string{"Furniture", "Cookware", "Decor", "Lighting"}, 10, 600},
	{"Clothing", []string{"Tops", "Bottoms", "Outerwear", "Footwear"}, 8, 220},
	{"Sports & Outdoors", []string{"Fitness", "Camping", "Cycling"}, 12, 450},
	{"Books", []string{"Fiction", "Nonfiction", "Technical"}, 6, 80},
	{"Toys & Games", []string{"Board Games", "Puzzles", "Building Sets"}, 9, 150},
}

var suppliers = []string{
	"Acme Wholesale", "Northwind Traders", "Brightline Goods", "Summit Supply Co",
	"Harbor Imports", "Cedar Valley Distribution", "Pacific Crest Partners",
}

var firstNames = []string{
	"Ana", "Ben", "Carla", "Diego", "Elena", "Felix", "Grace", "Hugo", "Iris",
	"Jonas", "Keiko", "Liam", "Maya", "Noah", "Olivia", "Pavel", "Quinn",
	"Rosa", "Sam", "Tara", "Umar", "Vera", "Wes", "Ximena", "Yara", "Zane",
}

var lastNames = []string{
	"Alvarez", "Brooks", "Chen", "Dubois", "Esposito", "Fischer", "Garcia",
	"Hansen", "Ito", "Jensen", "Kowalski", "Lindgren", "Moreau", "Novak",
	"Okafor", "Petrov", "Quintero", "Reyes", "Silva", "Tanaka", "Ueda",
	"Vargas", "Weber", "Xu", "Yilmaz", "Zhang",
}

type city struct {
	name, state, zip string
}

var cities = []city{
	{"Austin", "TX", "78701"}, {"Denver", "CO", "80202"}, {"Seattle", "WA", "98101"},
	{"Portland", "OR", "97201"}, {"Chicago", "IL", "60601"}, {"Atlanta", "GA", "30301"},
	{"Boston", "MA", "02108"}, {"Phoenix", "AZ", "85001"}, {"Nashville", "TN", "37201"},
	{"Columbus", "OH", "43085"},
}

// Seasonal order weight per month, peaking through the holiday season.
var monthWeights = []float64{
	0.7, 0.6, 0.8, 0.8, 0.9, 1.0,
	1.0, 0.9, 0.9, 1.1, 1.6, 1.9,
}

const (
	whaleShare  = 0.20
	whaleWeight = 7.0
	reviewRate  = 0.30
)

var (
	genStart = time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	genEnd   = time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// Generate builds a dataset from the options. The output is fully resolvable:
// every order, line, and review references a generated parent, and every
// derived field satisfies the load constraints.
func Generate(opts Options) *Dataset {
	rng := rand.New(rand.NewSource(opts.Seed))
	d := &Dataset{}
	d.generateProducts(rng, opts.Products)
	d.generateCustomers(rng, opts.Customers)
	d.generateOrders(rng, opts.Orders)
	d.generateReviews(rng)
	return d
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (d *Dataset) generateProducts(rng *rand.Rand, n int) {
	for i := 0; i < n; i++ {
		entry := catalog[rng.Intn(len(catalog))]
		sub := entry.subcategories[rng.Intn(len(entry.subcategories))]
		price := round2(entry.minPrice + rng.Float64()*(entry.maxPrice-entry.minPrice))

		// Rounding the cost can nudge the margin past its bounds on cheap
		// items, so resample until it lands inside.
		var cost, margin float64
		for {
			margin = 0.20 + rng.Float64()*0.30
			cost = round2(price * (1 - margin))
			actual := (price - cost) / price
			if actual >= 0.20 && actual <= 0.50 && cost > 0 {
				break
			}
		}

		created := randomDate(rng, genStart.AddDate(-1, 0, 0), genStart.AddDate(1, 0, 0))
		d.Products = append(d.Products, models.Product{
			ID:            int64(i + 1),
			Name:          fmt.Sprintf("%s %s %d", entry.category, sub, i+1),
			Category:      entry.category,
			Subcategory:   sub,
			Price:         price,
			Cost:          cost,
			StockQuantity: rng.Intn(500),
			Supplier:      suppliers[rng.Intn(len(suppliers))],
			CreatedDate:   created,
		})
	}
}

func (d *Dataset) generateCustomers(rng *rand.Rand, n int) {
	for i := 0; i < n; i++ {
		first := firstNames[rng.Intn(len(firstNames))]
		last := lastNames[rng.Intn(len(lastNames))]
		loc := cities[rng.Intn(len(cities))]
		var phone *string
		if rng.Float64() < 0.85 {
			p := fmt.Sprintf("555-%04d", rng.Intn(10000))
			phone = &p
		}
		d.Customers = append(d.Customers, models.Customer{
			ID:               int64(i + 1),
			FirstName:        first,
			LastName:         last,
			Email:            fmt.Sprintf("%s.%s.%d@example.com", strings.ToLower(first), strings.ToLower(last), i+1),
			Phone:            phone,
			Address:          fmt.Sprintf("%d %s St", rng.Intn(9000)+100, lastNames[rng.Intn(len(lastNames))]),
			City:             loc.name,
			State:            loc.state,
			Zip:              loc.zip,
			Country:          "USA",
			RegistrationDate: randomDate(rng, genStart, genEnd.AddDate(0, -6, 0)),
		})
	}
}

func (d *Dataset) generateOrders(rng *rand.Rand, n int) {
	if len(d.Customers) == 0 || len(d.Products) == 0 {
		return
	}

	// A small share of customers orders far more often than the rest.
	weights := make([]float64, len(d.Customers))
	var totalWeight float64
	for i := range d.Customers {
		w := 1.0
		if rng.Float64() < whaleShare {
			w = whaleWeight
		}
		weights[i] = w
		totalWeight += w
	}

	statuses := []enums.OrderStatus{
		enums.OrderStatusCompleted, enums.OrderStatusProcessing,
		enums.OrderStatusCancelled, enums.OrderStatusReturned,
	}
	statusWeights := []float64{0.80, 0.10, 0.05, 0.05}
	payments := []enums.PaymentMethod{
		enums.PaymentMethodCreditCard, enums.PaymentMethodPayPal, enums.PaymentMethodDebit,
	}
	paymentWeights := []float64{0.60, 0.25, 0.15}
	discounts := []float64{0, 0.10, 0.20, 0.25}
	discountWeights := []float64{0.70, 0.20, 0.08, 0.02}

	itemID := int64(1)
	for i := 0; i < n; i++ {
		c := d.Customers[weightedIndex(rng, weights, totalWeight)]
		orderDate := seasonalDate(rng, c.RegistrationDate, genEnd)
		order := models.Order{
			ID:              int64(i + 1),
			CustomerID:      c.ID,
			OrderDate:       orderDate,
			Status:          statuses[weightedChoice(rng, statusWeights)],
			PaymentMethod:   payments[weightedChoice(rng, paymentWeights)],
			ShippingAddress: c.Address,
			ShippingCity:    c.City,
			ShippingState:   c.State,
			ShippingZip:     c.Zip,
			ShippingCountry: c.Country,
		}

		lines := rng.Intn(5) + 1
		var total float64
		for j := 0; j < lines; j++ {
			p := d.Products[rng.Intn(len(d.Products))]
			qty := rng.Intn(4) + 1
			unitPrice := round2(p.Price * (0.95 + rng.Float64()*0.10))
			discount := discounts[weightedChoice(rng, discountWeights)]
			lineTotal := round2(float64(qty) * unitPrice * (1 - discount))
			d.OrderItems = append(d.OrderItems, models.OrderItem{
				ID:        itemID,
				OrderID:   order.ID,
				ProductID: p.ID,
				Quantity:  qty,
				UnitPrice: unitPrice,
				Discount:  discount,
				LineTotal: lineTotal,
			})
			itemID++
			total += lineTotal
		}
		order.TotalAmount = round2(total)
		d.Orders = append(d.Orders, order)
	}
}

// generateReviews samples purchases and reviews them 1 to 60 days after the
// order. Ratings skew higher for products priced in the upper half of the
// catalog.
func (d *Dataset) generateReviews(rng *rand.Rand) {
	if len(d.OrderItems) == 0 {
		return
	}

	prices := make([]float64, 0, len(d.Products))
	priceOf := make(map[int64]float64, len(d.Products))
	for _, p := range d.Products {
		prices = append(prices, p.Price)
		priceOf[p.ID] = p.Price
	}
	sort.Float64s(prices)

	orderByID := make(map[int64]models.Order, len(d.Orders))
	for _, o := range d.Orders {
		orderByID[o.ID] = o
	}

	type pair struct{ customerID, productID int64 }
	seen := make(map[pair]struct{})
	reviewID := int64(1)
	for _, it := range d.OrderItems {
		if rng.Float64() >= reviewRate {
			continue
		}
		o := orderByID[it.OrderID]
		key := pair{o.CustomerID, it.ProductID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		reviewDate := o.OrderDate.AddDate(0, 0, rng.Intn(60)+1)
		if reviewDate.After(genEnd) {
			reviewDate = genEnd
		}

		var text *string
		if rng.Float64() < 0.6 {
			t := reviewTexts[rng.Intn(len(reviewTexts))]
			text = &t
		}
		d.Reviews = append(d.Reviews, models.Review{
			ID:         reviewID,
			ProductID:  it.ProductID,
			CustomerID: o.CustomerID,
			Rating:     biasedRating(rng, percentile(prices, priceOf[it.ProductID])),
			ReviewText: text,
			ReviewDate: reviewDate,
		})
		reviewID++
	}
}

var reviewTexts = []string{
	"Exactly as described.",
	"Arrived quickly, works well.",
	"Decent value for the price.",
	"Quality could be better.",
	"Would buy again.",
	"Not what I expected.",
	"Solid build, happy with it.",
}

// biasedRating skews toward 4-5 for pricier products and toward the middle
// for cheap ones.
func biasedRating(rng *rand.Rand, pricePercentile float64) int {
	base := 3.0 + 1.5*pricePercentile + rng.NormFloat64()*0.9
	rating := int(math.Round(base))
	if rating < 1 {
		return 1
	}
	if rating > 5 {
		return 5
	}
	return rating
}

func percentile(sorted []float64, v float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	i := sort.SearchFloat64s(sorted, v)
	return float64(i) / float64(len(sorted))
}

func weightedChoice(rng *rand.Rand, weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	return weightedIndex(rng, weights, total)
}

func weightedIndex(rng *rand.Rand, weights []float64, total float64) int {
	target := rng.Float64() * total
	for i, w := range weights {
		target -= w
		if target < 0 {
			return i
		}
	}
	return len(weights) - 1
}

func randomDate(rng *rand.Rand, from, to time.Time) time.Time {
	days := int(to.Sub(from).Hours() / 24)
	if days <= 0 {
		return from
	}
	return from.AddDate(0, 0, rng.Intn(days+1))
}

// seasonalDate draws an order date at or after the registration date, with
// months weighted toward the end of the year.
func seasonalDate(rng *rand.Rand, registered, to time.Time) time.Time {
	for attempt := 0; attempt < 50; attempt++ {
		date := randomDate(rng, registered, to)
		weight := monthWeights[int(date.Month())-1]
		if rng.Float64()*2.0 < weight {
			return date
		}
	}
	return randomDate(rng, registered, to)
}

