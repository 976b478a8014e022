package model

// Session аутентифицированная личность клиента, единственное что клиент хранит долговременно
type Session struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// Valid сессия без email или токена считается битой
func (s Session) Valid() bool {
	return s.Email != "" && s.Token != ""
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Error string `json:"error,omitempty"`
}

type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

type Order struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Status    string `json:"status"`
}

type OrderRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// PlacedOrder ответ сервиса заказов. ID строкой: сервис отдает то число, то строковый pk
type PlacedOrder struct {
	ID      string
	Status  string
	Message string
}

// Draft заказ между открытием диалога и submit/cancel
type Draft struct {
	ProductID   int64
	ProductName string
	MaxQuantity int
}

type AlertKind string

const (
	AlertSuccess AlertKind = "success"
	AlertError   AlertKind = "error"
)

// Screen текущий экран клиента: Auth.* без сессии, Main.* только с сессией
type Screen string

const (
	ScreenLogin    Screen = "Auth.Login"
	ScreenRegister Screen = "Auth.Register"
	ScreenProducts Screen = "Main.Products"
	ScreenOrders   Screen = "Main.Orders"
)

func (s Screen) IsMain() bool {
	return s == ScreenProducts || s == ScreenOrders
}
