package demo

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

type User struct {
	ID        int64
	Name      string
	Email     string
	Country   string
	CreatedAt time.Time
}

type Product struct {
	ID       int64
	Name     string
	Category string
	Price    float64
}

type OrderItem struct {
	ProductID int64
	Quantity  int
	UnitPrice float64
}

type Order struct {
	ID        int64
	UserID    int64
	Status    string
	OrderedAt time.Time
	Total     float64
	Items     []OrderItem
}

var (
	firstNames = []string{"Ada", "Grace", "Linus", "Margaret", "Ken", "Barbara", "Dennis", "Frances", "Alan", "Radia"}
	lastNames  = []string{"Lovelace", "Hopper", "Torvalds", "Hamilton", "Thompson", "Liskov", "Ritchie", "Allen", "Turing", "Perlman"}
	countries  = []string{"US", "DE", "GB", "IN", "JP", "BR"}
	catalog    = map[string][]string{
		"books":       {"Go in Practice", "SQL Cookbook", "Designing Data Systems"},
		"electronics": {"USB-C Hub", "Mechanical Keyboard", "Noise Cancelling Headphones"},
		"home":        {"Pour Over Kettle", "Desk Lamp", "Standing Mat"},
		"outdoors":    {"Trail Backpack", "Water Filter", "Camp Stove"},
	}
	categories = []string{"books", "electronics", "home", "outdoors"}
)

// Generator produces deterministic sample rows for a given seed.
type Generator struct {
	rnd        *rand.Rand
	now        func() time.Time
	userSeq    int64
	productSeq int64
	orderSeq   int64
}

func NewGenerator(seed int64) *Generator {
	return &Generator{
		rnd: rand.New(rand.NewSource(seed)),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (g *Generator) NextUser() User {
	g.userSeq++
	first := pickOne(g.rnd, firstNames)
	last := pickOne(g.rnd, lastNames)
	return User{
		ID:        g.userSeq,
		Name:      first + " " + last,
		Email:     fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), g.userSeq),
		Country:   pickOne(g.rnd, countries),
		CreatedAt: g.pastTime(365),
	}
}

func (g *Generator) NextProduct() Product {
	g.productSeq++
	category := pickOne(g.rnd, categories)
	return Product{
		ID:       g.productSeq,
		Name:     fmt.Sprintf("%s #%d", pickOne(g.rnd, catalog[category]), g.productSeq),
		Category: category,
		Price:    round2(5 + g.rnd.Float64()*195),
	}
}

// NextOrder references users 1..userCount and up to four distinct entries of
// products. products must not be empty.
func (g *Generator) NextOrder(userCount int, products []Product) Order {
	g.orderSeq++
	itemCount := 1 + g.rnd.Intn(min(4, len(products)))
	order := Order{
		ID:        g.orderSeq,
		UserID:    int64(g.rnd.Intn(userCount) + 1),
		Status:    g.pickStatus(),
		OrderedAt: g.pastTime(180),
		Items:     make([]OrderItem, 0, itemCount),
	}
	for _, idx := range g.rnd.Perm(len(products))[:itemCount] {
		product := products[idx]
		item := OrderItem{ProductID: product.ID, Quantity: 1 + g.rnd.Intn(3), UnitPrice: product.Price}
		order.Total += float64(item.Quantity) * item.UnitPrice
		order.Items = append(order.Items, item)
	}
	order.Total = round2(order.Total)
	return order
}

func (g *Generator) pickStatus() string {
	p := g.rnd.Intn(100)
	switch {
	case p < 70:
		return "delivered"
	case p < 85:
		return "shipped"
	case p < 95:
		return "pending"
	default:
		return "cancelled"
	}
}

func (g *Generator) pastTime(maxDays int) time.Time {
	offset := time.Duration(g.rnd.Int63n(int64(maxDays) * int64(24*time.Hour)))
	return g.now().Add(-offset).Truncate(time.Second)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func pickOne(r *rand.Rand, values []string) string {
	return values[r.Intn(len(values))]
}
