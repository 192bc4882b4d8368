// Package sample is a small domain model used to demonstrate and exercise
// the build engine: people with addresses and employers, orders with a
// registered constructor, and an interface mapped to a concrete shape.
package sample

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pithecene-io/modelforge/build"
	"github.com/pithecene-io/modelforge/generate"
	"github.com/pithecene-io/modelforge/history"
	"github.com/pithecene-io/modelforge/rules"
	"github.com/pithecene-io/modelforge/typeinfo"
)

// Address is a postal address. Country, State and City are correlated.
type Address struct {
	Street   string `json:"street" yaml:"street" msgpack:"street"`
	City     string `json:"city" yaml:"city" msgpack:"city"`
	State    string `json:"state" yaml:"state" msgpack:"state"`
	Postcode string `json:"postcode" yaml:"postcode" msgpack:"postcode"`
	Country  string `json:"country" yaml:"country" msgpack:"country"`
}

// Company is an employer.
type Company struct {
	ID           uuid.UUID `json:"id" yaml:"id" msgpack:"id"`
	CompanyName  string    `json:"company_name" yaml:"company_name" msgpack:"company_name"`
	Domain       string    `json:"domain" yaml:"domain" msgpack:"domain"`
	Headquarters Address   `json:"headquarters" yaml:"headquarters" msgpack:"headquarters"`
	Founded      time.Time `json:"founded" yaml:"founded" msgpack:"founded"`
}

// Person is a customer or employee.
type Person struct {
	ID          uuid.UUID `json:"id" yaml:"id" msgpack:"id"`
	Gender      string    `json:"gender" yaml:"gender" msgpack:"gender"`
	FirstName   string    `json:"first_name" yaml:"first_name" msgpack:"first_name"`
	LastName    string    `json:"last_name" yaml:"last_name" msgpack:"last_name"`
	Email       string    `json:"email" yaml:"email" msgpack:"email"`
	Phone       string    `json:"phone" yaml:"phone" msgpack:"phone"`
	DateOfBirth time.Time `json:"date_of_birth" yaml:"date_of_birth" msgpack:"date_of_birth"`
	Age         int       `json:"age" yaml:"age" msgpack:"age"`
	Address     Address   `json:"address" yaml:"address" msgpack:"address"`
	Employer    *Company  `json:"employer,omitempty" yaml:"employer,omitempty" msgpack:"employer,omitempty"`
}

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

// Order statuses.
const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
)

// Statuses lists every OrderStatus.
var Statuses = []OrderStatus{StatusPending, StatusPaid, StatusShipped, StatusDelivered}

// OrderLine is one product line of an order.
type OrderLine struct {
	SKU       string  `json:"sku" yaml:"sku" msgpack:"sku"`
	Quantity  int     `json:"quantity" yaml:"quantity" msgpack:"quantity"`
	UnitPrice float64 `json:"unit_price" yaml:"unit_price" msgpack:"unit_price"`
}

// Order is a customer order. Total is derived from the lines.
type Order struct {
	ID       uuid.UUID   `json:"id" yaml:"id" msgpack:"id"`
	Number   string      `json:"number" yaml:"number" msgpack:"number"`
	Customer *Person     `json:"customer" yaml:"customer" msgpack:"customer"`
	Lines    []OrderLine `json:"lines" yaml:"lines" msgpack:"lines"`
	Status   OrderStatus `json:"status" yaml:"status" msgpack:"status"`
	PlacedAt time.Time   `json:"placed_at" yaml:"placed_at" msgpack:"placed_at"`
	Total    float64     `json:"total" yaml:"total" msgpack:"total" modelforge:"readonly"`
}

// NewOrder creates an order for customer.
func NewOrder(number string, customer *Person) *Order {
	return &Order{Number: number, Customer: customer, Status: StatusPending}
}

// LineTotal sums quantity times unit price, rounded to cents.
func (o *Order) LineTotal() float64 {
	var total float64
	for _, l := range o.Lines {
		total += float64(l.Quantity) * l.UnitPrice
	}
	return math.Round(total*100) / 100
}

// Shape is anything with an area.
type Shape interface {
	Area() float64
}

// Circle is the Shape built when a Shape is requested.
type Circle struct {
	Radius float64 `json:"radius" yaml:"radius" msgpack:"radius"`
}

// Area returns the area of the circle.
func (c *Circle) Area() float64 {
	return math.Pi * c.Radius * c.Radius
}

// Drawing holds shapes.
type Drawing struct {
	Title  string  `json:"title" yaml:"title" msgpack:"title"`
	Shapes []Shape `json:"shapes" yaml:"shapes" msgpack:"shapes"`
}

// Types returns the sample types by name.
func Types() map[string]reflect.Type {
	return map[string]reflect.Type{
		"Address":   reflect.TypeFor[Address](),
		"Company":   reflect.TypeFor[Company](),
		"Person":    reflect.TypeFor[Person](),
		"Order":     reflect.TypeFor[*Order](),
		"OrderLine": reflect.TypeFor[OrderLine](),
		"Shape":     reflect.TypeFor[Shape](),
		"Drawing":   reflect.TypeFor[Drawing](),
	}
}

// Names returns the sample type names in sorted order.
func Names() []string {
	types := Types()
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Module registers the sample model with a compiler.
var Module build.Module = build.ModuleFunc(func(c *build.Compiler) { Register(c) })

// Register adds the constructors, mappings and rules of the sample model.
func Register(c *build.Compiler) *build.Compiler {
	r := c.Random()
	if r == nil {
		r = generate.Shared()
	}

	build.Map[Shape, *Circle](c)
	c.RegisterConstructor(NewOrder, typeinfo.ParamNames("Number", "Customer"))

	c.AddRule(rules.NewParameterCreationFunc(reflect.TypeFor[*Order](), "Number",
		func(reflect.Type, typeinfo.Member, *history.BuildHistory) (any, error) {
			return fmt.Sprintf("ORD-%06d", r.IntN(1_000_000)), nil
		}, 0))
	c.AddRule(rules.NewTypeCreationFunc(reflect.TypeFor[OrderStatus](),
		func(reflect.Type, typeinfo.Member, *history.BuildHistory) (any, error) {
			return generate.Pick(r, Statuses), nil
		}, 0))
	c.AddRule(rules.NewPropertyCreationFunc(reflect.TypeFor[OrderLine](), "SKU",
		func(reflect.Type, typeinfo.Member, *history.BuildHistory) (any, error) {
			return fmt.Sprintf("SKU-%04X", r.IntN(0x10000)), nil
		}, 0))
	c.AddRule(rules.NewPropertyCreationFunc(reflect.TypeFor[OrderLine](), "Quantity",
		func(reflect.Type, typeinfo.Member, *history.BuildHistory) (any, error) {
			return r.Between(1, 10), nil
		}, 0))
	c.AddRule(rules.NewPropertyCreationFunc(reflect.TypeFor[OrderLine](), "UnitPrice",
		func(reflect.Type, typeinfo.Member, *history.BuildHistory) (any, error) {
			return float64(r.Between(100, 50_000)) / 100, nil
		}, 0))
	c.AddRule(rules.NewPropertyCreationFunc(reflect.TypeFor[Circle](), "Radius",
		func(reflect.Type, typeinfo.Member, *history.BuildHistory) (any, error) {
			return float64(r.Between(1, 100)), nil
		}, 0))

	c.AddRule(rules.NewPostBuildAction(reflect.TypeFor[*Order](), func(instance any, _ *history.BuildHistory) (any, error) {
		o := instance.(*Order)
		o.Total = o.LineTotal()
		return o, nil
	}, 0))
	return c
}
