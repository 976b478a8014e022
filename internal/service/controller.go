package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/squaredbusinessman/storefront-client/internal/client"
	"github.com/squaredbusinessman/storefront-client/internal/logger"
	"github.com/squaredbusinessman/storefront-client/internal/model"
)

type UserAPI interface {
	Register(ctx context.Context, creds model.Credentials) error
	Login(ctx context.Context, creds model.Credentials) (string, error)
}

type ProductAPI interface {
	List(ctx context.Context) ([]model.Product, error)
	Search(ctx context.Context, name string) ([]model.Product, error)
	Add(ctx context.Context, in model.ProductInput) error
}

type OrderAPI interface {
	Place(ctx context.Context, req model.OrderRequest) (model.PlacedOrder, error)
	List(ctx context.Context) ([]model.Order, error)
}

type SessionStore interface {
	Restore(ctx context.Context) (model.Session, bool)
	Save(ctx context.Context, sess model.Session) error
	Clear(ctx context.Context) error
}

type Notifier interface {
	Push(message string, kind model.AlertKind) string
}

const (
	msgRegistered      = "Registration successful! Please login."
	msgRegisterFailed  = "Registration failed"
	msgLoggedIn        = "Login successful!"
	msgLoginFailed     = "Login failed"
	msgConnection      = "Error connecting to server"
	msgLoadProducts    = "Error loading products"
	msgSearchProducts  = "Error searching products"
	msgProductAdded    = "Product added successfully!"
	msgAddFailed       = "Failed to add product"
	msgAddConnection   = "Error adding product"
	msgOrderPlaced     = "Order placed successfully!"
	msgOrderFailed     = "Failed to place order"
	msgOrderConnection = "Error placing order"
	msgLoadOrders      = "Error loading orders"
)

// Controller переводит действия пользователя в вызовы сервисов и новое состояние.
// Любая ошибка превращается в уведомление здесь же и дальше не уходит, ретраев нет.
// Повторный submit не блокируется: два клика дают два запроса.
type Controller struct {
	users    UserAPI
	products ProductAPI
	orders   OrderAPI
	sessions SessionStore
	alerts   Notifier
}

func NewController(users UserAPI, products ProductAPI, orders OrderAPI, sessions SessionStore, alerts Notifier) *Controller {
	if users == nil || products == nil || orders == nil {
		panic("nil service client")
	}
	if sessions == nil {
		panic("nil session store")
	}
	if alerts == nil {
		panic("nil notifier")
	}
	return &Controller{
		users:    users,
		products: products,
		orders:   orders,
		sessions: sessions,
		alerts:   alerts,
	}
}

// Start начальное состояние: Main.Products если сессию удалось восстановить, иначе Auth.Login
func (c *Controller) Start(ctx context.Context) State {
	sess, ok := c.sessions.Restore(ctx)
	if !ok {
		return State{Screen: model.ScreenLogin}
	}

	st := State{Screen: model.ScreenProducts, Session: &sess}
	return c.loadProducts(ctx, st)
}

func (c *Controller) ShowLogin(st State) State {
	if st.LoggedIn() {
		return st
	}
	st.Screen = model.ScreenLogin
	return st
}

func (c *Controller) ShowRegister(st State) State {
	if st.LoggedIn() {
		return st
	}
	st.Screen = model.ScreenRegister
	return st
}

func (c *Controller) Register(ctx context.Context, st State, email, password string) State {
	if st.LoggedIn() {
		return st
	}

	creds, err := credentials(email, password)
	if err != nil {
		c.fail(err, "", "")
		return st
	}

	if err = c.users.Register(ctx, creds); err != nil {
		c.fail(err, msgRegisterFailed, msgConnection)
		return st
	}

	c.alerts.Push(msgRegistered, model.AlertSuccess)
	st.Screen = model.ScreenLogin
	return st
}

func (c *Controller) Login(ctx context.Context, st State, email, password string) State {
	if st.LoggedIn() {
		return st
	}

	creds, err := credentials(email, password)
	if err != nil {
		c.fail(err, "", "")
		return st
	}

	token, err := c.users.Login(ctx, creds)
	if err != nil {
		c.fail(err, msgLoginFailed, msgConnection)
		return st
	}

	sess := model.Session{Email: creds.Email, Token: token}
	if err = c.sessions.Save(ctx, sess); err != nil {
		// сессия в памяти уже есть, после перезапуска придется войти заново
		logger.Log.Warn("persist session", zap.Error(err))
	}
	logger.Log.Info("logged in", zap.String("email", sess.Email))

	c.alerts.Push(msgLoggedIn, model.AlertSuccess)
	st = State{Screen: model.ScreenProducts, Session: &sess}
	return c.loadProducts(ctx, st)
}

func (c *Controller) Logout(ctx context.Context, st State) State {
	if err := c.sessions.Clear(ctx); err != nil {
		logger.Log.Warn("clear session", zap.Error(err))
	}
	if st.Session != nil {
		logger.Log.Info("logged out", zap.String("email", st.Session.Email))
	}
	return State{Screen: model.ScreenLogin}
}

// SwitchTab вход на вкладку всегда перезапрашивает ее данные
func (c *Controller) SwitchTab(ctx context.Context, st State, tab string) State {
	if !st.LoggedIn() {
		return st
	}

	switch tab {
	case TabProducts:
		st.Screen = model.ScreenProducts
		st.SearchTerm = ""
		return c.loadProducts(ctx, st)
	case TabOrders:
		st.Screen = model.ScreenOrders
		return c.loadOrders(ctx, st)
	default:
		c.fail(&ValidationError{Message: msgUnknownTab}, "", "")
		return st
	}
}

func (c *Controller) Search(ctx context.Context, st State, term string) State {
	if !st.LoggedIn() {
		return st
	}

	st.Screen = model.ScreenProducts
	st.SearchTerm = term

	products, err := c.products.Search(ctx, term)
	if err != nil {
		c.fail(err, msgSearchProducts, msgSearchProducts)
		return st
	}
	st.Products = products
	return st
}

func (c *Controller) AddProduct(ctx context.Context, st State, form ProductForm) State {
	if !st.LoggedIn() {
		return st
	}

	in, err := productInput(form)
	if err != nil {
		c.fail(err, "", "")
		return st
	}

	if err = c.products.Add(ctx, in); err != nil {
		c.fail(err, msgAddFailed, msgAddConnection)
		return st
	}

	c.alerts.Push(msgProductAdded, model.AlertSuccess)
	st.Screen = model.ScreenProducts
	st.SearchTerm = ""
	return c.loadProducts(ctx, st)
}

// OpenDraft черновик один: новый заменяет прежний
func (c *Controller) OpenDraft(st State, form DraftForm) State {
	if !st.LoggedIn() {
		return st
	}

	id, err := strconv.ParseInt(strings.TrimSpace(form.ProductID), 10, 64)
	if err != nil || id <= 0 {
		c.fail(&ValidationError{Message: msgInvalidProduct}, "", "")
		return st
	}
	maxQty, ok := parseCount(form.MaxQuantity)
	if !ok {
		c.fail(&ValidationError{Message: msgInvalidProduct}, "", "")
		return st
	}

	st.Draft = &model.Draft{
		ProductID:   id,
		ProductName: form.ProductName,
		MaxQuantity: maxQty,
	}
	return st
}

func (c *Controller) CancelDraft(st State) State {
	st.Draft = nil
	return st
}

// SubmitDraft при ошибке сервиса черновик остается открытым
func (c *Controller) SubmitDraft(ctx context.Context, st State, rawQuantity string) State {
	if !st.LoggedIn() {
		return st
	}
	if st.Draft == nil {
		c.fail(&ValidationError{Message: msgNoDraft}, "", "")
		return st
	}

	qty, err := parseOrderQuantity(rawQuantity, st.Draft.MaxQuantity)
	if err != nil {
		c.fail(err, "", "")
		return st
	}

	placed, err := c.orders.Place(ctx, model.OrderRequest{ProductID: st.Draft.ProductID, Quantity: qty})
	if err != nil {
		c.fail(err, msgOrderFailed, msgOrderConnection)
		return st
	}
	logger.Log.Info("order placed",
		zap.Int64("product_id", st.Draft.ProductID),
		zap.Int("quantity", qty),
		zap.String("order_id", placed.ID),
	)

	c.alerts.Push(msgOrderPlaced, model.AlertSuccess)
	st.Draft = nil
	st.SearchTerm = ""
	return c.loadProducts(ctx, st)
}

// loadProducts при ошибке остается последний удачный список
func (c *Controller) loadProducts(ctx context.Context, st State) State {
	products, err := c.products.List(ctx)
	if err != nil {
		c.fail(err, msgLoadProducts, msgLoadProducts)
		return st
	}
	st.Products = products
	return st
}

func (c *Controller) loadOrders(ctx context.Context, st State) State {
	orders, err := c.orders.List(ctx)
	if err != nil {
		c.fail(err, msgLoadOrders, msgLoadOrders)
		return st
	}
	st.Orders = orders
	return st
}

// fail превращает ошибку в уведомление. failedMsg для ответа без detail, connMsg когда ответа не было.
func (c *Controller) fail(err error, failedMsg, connMsg string) {
	c.alerts.Push(alertMessage(err, failedMsg, connMsg), model.AlertError)
}

func alertMessage(err error, failedMsg, connMsg string) string {
	var (
		validation *ValidationError
		failed     *client.RequestFailedError
		connErr    *client.ConnectionError
	)

	switch {
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &failed):
		logger.Log.Warn("request failed", zap.Int("status", failed.Status), zap.String("detail", failed.Detail))
		if failed.Detail != "" {
			return failed.Detail
		}
		return failedMsg
	case errors.As(err, &connErr):
		return connMsg
	default:
		logger.Log.Error("unexpected error", zap.Error(err))
		return failedMsg
	}
}

func credentials(email, password string) (model.Credentials, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return model.Credentials{}, &ValidationError{Message: msgMissingEmailPass}
	}
	return model.Credentials{Email: email, Password: password}, nil
}

func productInput(form ProductForm) (model.ProductInput, error) {
	name := strings.TrimSpace(form.Name)
	if name == "" {
		return model.ProductInput{}, &ValidationError{Message: msgMissingName}
	}
	price, ok := parsePrice(form.Price)
	if !ok {
		return model.ProductInput{}, &ValidationError{Message: msgInvalidPrice}
	}
	qty, ok := parseCount(form.Quantity)
	if !ok {
		return model.ProductInput{}, &ValidationError{Message: msgInvalidStock}
	}
	return model.ProductInput{
		Name:        name,
		Description: strings.TrimSpace(form.Description),
		Price:       price,
		Quantity:    qty,
	}, nil
}
