package recasttest

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zoobzio/recast"
)

// Point is a plain type with no alias.
type Point struct {
	X int `recast:"x"`
	Y int `recast:"y"`
}

// Pt is Point registered under the alias "Pt".
type Pt struct {
	_ recast.Alias `alias:"Pt"`
	X int          `recast:"x"`
	Y int          `recast:"y"`
}

// Shape is the polymorphic slot used by Drawing.
type Shape interface {
	Area() float64
}

// Circle declares its alias through a method.
type Circle struct {
	Radius float64 `recast:"radius"`
}

// RecastAlias implements recast.Aliaser.
func (Circle) RecastAlias() string { return "circle" }

// Area implements Shape.
func (c Circle) Area() float64 { return math.Pi * c.Radius * c.Radius }

// Square declares its alias through a marker field.
type Square struct {
	_    recast.Alias `alias:"square"`
	Side float64      `recast:"side"`
}

// Area implements Shape.
func (s Square) Area() float64 { return s.Side * s.Side }

// Polygon implements Shape on its pointer, so it decodes into a Shape slot
// as *Polygon.
type Polygon struct {
	Points []Point `recast:"points"`
}

// RecastAlias implements recast.Aliaser.
func (*Polygon) RecastAlias() string { return "polygon" }

// Area implements Shape using the shoelace formula.
func (p *Polygon) Area() float64 {
	var sum float64
	for i, a := range p.Points {
		b := p.Points[(i+1)%len(p.Points)]
		sum += float64(a.X*b.Y - b.X*a.Y)
	}
	return math.Abs(sum) / 2
}

// Drawing exercises interface slots inside every container shape.
type Drawing struct {
	Title   string              `recast:"title"`
	Shapes  []Shape             `recast:"shapes"`
	Primary Shape               `recast:"primary,omitempty"`
	Layers  map[string][]Shape  `recast:"layers"`
	Tags    map[string]struct{} `recast:"tags"`
	Meta    map[string]any      `recast:"meta"`
}

// Catalog is an alias search root for the shape fixtures.
type Catalog struct{}

// RecastTypes implements recast.AliasSource.
func (Catalog) RecastTypes() []any {
	return []any{Circle{}, Square{}, (*Polygon)(nil), Pt{}}
}

// Status is an enumerated scalar with a text form.
type Status int

// Order statuses.
const (
	StatusPending Status = iota
	StatusShipped
	StatusDelivered
)

var statusNames = []string{"pending", "shipped", "delivered"}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if int(s) < 0 || int(s) >= len(statusNames) {
		return nil, fmt.Errorf("unknown status %d", int(s))
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// Audit is embedded by Order; its fields are flattened.
type Audit struct {
	CreatedAt time.Time `recast:"created_at"`
	Version   uint32    `recast:"version"`
}

// Address is an optional nested object.
type Address struct {
	Street string `recast:"street"`
	City   string `recast:"city"`
}

// Item is an order line.
type Item struct {
	SKU   string  `recast:"sku"`
	Qty   int     `recast:"qty"`
	Price float64 `recast:"price"`
}

// Order exercises every field category.
type Order struct {
	Audit
	ID         uuid.UUID           `recast:"id"`
	Status     Status              `recast:"status"`
	Items      []Item              `recast:"items"`
	Ship       *Address            `recast:"ship,omitempty"`
	Quantities map[string]int      `recast:"quantities"`
	Labels     map[int]string      `recast:"labels"`
	Tags       map[string]struct{} `recast:"tags"`
	TTL        time.Duration       `recast:"ttl"`
	Grid       [2]Point            `recast:"grid"`
	Raw        []byte              `recast:"raw"`
	Cache      string              `recast:"-"`
}

// Secret is a string never stored in the clear.
type Secret string

// Credentials holds a Secret field.
type Credentials struct {
	User     string `recast:"user"`
	Password Secret `recast:"password"`
}

// SecretTransformer stores every Secret as "***" and rebuilds a Secret from
// any stored scalar.
type SecretTransformer struct{}

// SupportedTypes implements recast.Transformer.
func (SecretTransformer) SupportedTypes() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[Secret]()}
}

// Encode implements recast.Transformer.
func (SecretTransformer) Encode(_ *recast.Recaster, _ reflect.Value) (any, error) {
	return "***", nil
}

// Decode implements recast.Transformer.
func (SecretTransformer) Decode(_ *recast.Recaster, _ reflect.Type, data any) (reflect.Value, error) {
	if data == nil {
		return reflect.ValueOf(Secret("")), nil
	}
	return reflect.ValueOf(Secret(fmt.Sprint(data))), nil
}

// Settings has defaults applied by the object factory.
type Settings struct {
	Retries int    `recast:"retries"`
	Mode    string `recast:"mode"`
	Verbose bool   `recast:"verbose"`
}

// Initialize implements recast.Initializer.
func (s *Settings) Initialize() error {
	s.Retries = 3
	s.Mode = "auto"
	return nil
}

// Money writes its own fields, bypassing reflection.
type Money struct {
	Cents    int64
	Currency string
}

// EncodeFields implements recast.FieldEncoder.
func (m Money) EncodeFields(_ *recast.Recaster, out *recast.Map) error {
	sign := ""
	cents := m.Cents
	if cents < 0 {
		sign, cents = "-", -cents
	}
	out.Set("amount", fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100))
	out.Set("currency", m.Currency)
	return nil
}

// DecodeFields implements recast.FieldDecoder.
func (m *Money) DecodeFields(_ *recast.Recaster, in *recast.Map) error {
	raw, _ := in.Get("amount")
	amount, ok := raw.(string)
	if !ok {
		return fmt.Errorf("amount: expected string, got %T", raw)
	}
	whole, frac, _ := strings.Cut(amount, ".")
	negative := strings.HasPrefix(whole, "-")
	w, err := strconv.ParseInt(strings.TrimPrefix(whole, "-"), 10, 64)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	var f int64
	if frac != "" {
		if f, err = strconv.ParseInt(frac, 10, 64); err != nil {
			return fmt.Errorf("amount: %w", err)
		}
	}
	m.Cents = w*100 + f
	if negative {
		m.Cents = -m.Cents
	}
	currency, _ := in.Get("currency")
	m.Currency, _ = currency.(string)
	return nil
}

// Invoice holds a Money field.
type Invoice struct {
	Number string `recast:"number"`
	Total  Money  `recast:"total"`
}
