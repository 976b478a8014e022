package service

import "github.com/squaredbusinessman/storefront-client/internal/model"

// State единственный владелец клиентского состояния. Операции контроллера
// принимают State и возвращают новый, глобальных переменных нет.
type State struct {
	Screen     model.Screen
	Session    *model.Session
	SearchTerm string
	Products   []model.Product
	Orders     []model.Order
	Draft      *model.Draft
}

func (s State) LoggedIn() bool {
	return s.Session != nil
}

const (
	TabProducts = "products"
	TabOrders   = "orders"
)

// ProductForm сырые значения формы добавления товара
type ProductForm struct {
	Name        string
	Description string
	Price       string
	Quantity    string
}

// DraftForm сырые значения кнопки "Order Now"
type DraftForm struct {
	ProductID   string
	ProductName string
	MaxQuantity string
}
