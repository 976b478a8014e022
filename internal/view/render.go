package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/squaredbusinessman/storefront-client/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

const noDescription = "No description"

var funcs = template.FuncMap{
	"money":    formatMoney,
	"describe": describe,
}

// шаблоны парсятся один раз при старте, ошибка парсинга это баг сборки
var templates = template.Must(template.New("storefront").Funcs(funcs).ParseFS(templatesFS, "templates/*.html"))

func formatMoney(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

func describe(description string) string {
	if strings.TrimSpace(description) == "" {
		return noDescription
	}
	return description
}

// Alert уведомление вверху страницы
type Alert struct {
	ID      string
	Message string
	Kind    model.AlertKind
}

// Page все что нужно для отрисовки страницы целиком
type Page struct {
	Screen     model.Screen
	Email      string
	SearchTerm string
	Products   []model.Product
	Orders     []model.Order
	Draft      *model.Draft
	Alerts     []Alert
}

// RenderProducts nil и пустой список дают заглушку "No products found"
func RenderProducts(w io.Writer, products []model.Product) error {
	return templates.ExecuteTemplate(w, "products", products)
}

// RenderOrders nil и пустой список дают заглушку "No orders found"
func RenderOrders(w io.Writer, orders []model.Order) error {
	return templates.ExecuteTemplate(w, "orders", orders)
}

func RenderAlert(w io.Writer, alert Alert) error {
	return templates.ExecuteTemplate(w, "alert", alert)
}

func RenderPage(w io.Writer, page Page) error {
	return templates.ExecuteTemplate(w, "page", page)
}
