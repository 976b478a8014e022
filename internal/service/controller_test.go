package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/squaredbusinessman/storefront-client/internal/auth"
	"github.com/squaredbusinessman/storefront-client/internal/client"
	"github.com/squaredbusinessman/storefront-client/internal/model"
	"github.com/squaredbusinessman/storefront-client/internal/repository"
	"github.com/squaredbusinessman/storefront-client/internal/session"
)

type recordedAlert struct {
	Message string
	Kind    model.AlertKind
}

type recordingNotifier struct {
	alerts []recordedAlert
}

func (n *recordingNotifier) Push(message string, kind model.AlertKind) string {
	n.alerts = append(n.alerts, recordedAlert{Message: message, Kind: kind})
	return ""
}

func (n *recordingNotifier) last() recordedAlert {
	if len(n.alerts) == 0 {
		return recordedAlert{}
	}
	return n.alerts[len(n.alerts)-1]
}

type call struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// fakeService один бэкенд: отвечает заданным handler и пишет журнал вызовов
type fakeService struct {
	mu      sync.Mutex
	calls   []call
	respond func(c call) (int, string)
	srv     *httptest.Server
}

func newFakeService() *fakeService {
	f := &fakeService{
		respond: func(c call) (int, string) { return http.StatusOK, `[]` },
	}
	f.srv = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		raw, _ := io.ReadAll(request.Body)
		c := call{
			Method: request.Method,
			Path:   request.URL.Path,
			Query:  request.URL.Query().Get("name"),
			Body:   string(raw),
		}

		f.mu.Lock()
		f.calls = append(f.calls, c)
		respond := f.respond
		f.mu.Unlock()

		status, body := respond(c)
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(status)
		_, _ = io.WriteString(writer, body)
	}))
	return f
}

func (f *fakeService) callsTo(method, path string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []call
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeService) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type ControllerSuite struct {
	suite.Suite

	users    *fakeService
	products *fakeService
	orders   *fakeService

	slot     *repository.FileStorage
	store    *session.Store
	alerts   *recordingNotifier
	ctrl     *Controller
	ctx      context.Context
	loggedIn State
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.ctx = context.Background()

	s.users = newFakeService()
	s.products = newFakeService()
	s.orders = newFakeService()

	s.slot = repository.NewFileStorage(filepath.Join(s.T().TempDir(), "session.json"))
	s.store = session.NewStore(s.slot, auth.NewTokenInspector())
	s.alerts = &recordingNotifier{}

	s.ctrl = NewController(
		client.NewUserClient(client.New(s.users.srv.URL, nil)),
		client.NewProductClient(client.New(s.products.srv.URL, nil)),
		client.NewOrderClient(client.New(s.orders.srv.URL, nil)),
		s.store,
		s.alerts,
	)

	sess := model.Session{Email: "a@b.com", Token: "T1"}
	s.loggedIn = State{Screen: model.ScreenProducts, Session: &sess}
}

func (s *ControllerSuite) TearDownTest() {
	s.users.srv.Close()
	s.products.srv.Close()
	s.orders.srv.Close()
}

func (s *ControllerSuite) withDraft(productID int64, maxQty int) State {
	st := s.loggedIn
	st.Draft = &model.Draft{ProductID: productID, ProductName: "Tea", MaxQuantity: maxQty}
	return st
}

func (s *ControllerSuite) TestStart_WithoutSession() {
	st := s.ctrl.Start(s.ctx)

	s.Require().Equal(model.ScreenLogin, st.Screen)
	s.Require().Nil(st.Session)
	s.Require().Zero(s.products.total())
}

func (s *ControllerSuite) TestStart_RestoresSession() {
	s.Require().NoError(s.store.Save(s.ctx, model.Session{Email: "a@b.com", Token: "T1"}))
	s.products.respond = func(c call) (int, string) {
		return http.StatusOK, `[{"id":7,"name":"Tea","price":3.5,"quantity":10}]`
	}

	st := s.ctrl.Start(s.ctx)

	s.Require().Equal(model.ScreenProducts, st.Screen)
	s.Require().Equal(&model.Session{Email: "a@b.com", Token: "T1"}, st.Session)
	s.Require().Len(s.products.callsTo(http.MethodGet, "/products"), 1)
	s.Require().Len(st.Products, 1)
}

func (s *ControllerSuite) TestStart_MalformedSlot() {
	s.Require().NoError(s.slot.Store(s.ctx, []byte("{not json")))

	st := s.ctrl.Start(s.ctx)

	s.Require().Equal(model.ScreenLogin, st.Screen)
	s.Require().Nil(st.Session)
	s.Require().Empty(s.alerts.alerts)
}

func (s *ControllerSuite) TestLogin_Success() {
	s.users.respond = func(c call) (int, string) { return http.StatusOK, `{"token":"T1"}` }

	st := s.ctrl.Login(s.ctx, State{Screen: model.ScreenLogin}, "a@b.com", "x")

	s.Require().Equal(model.ScreenProducts, st.Screen)
	s.Require().Equal(&model.Session{Email: "a@b.com", Token: "T1"}, st.Session)

	logins := s.users.callsTo(http.MethodPost, "/login")
	s.Require().Len(logins, 1)
	s.Require().JSONEq(`{"email":"a@b.com","password":"x"}`, logins[0].Body)

	s.Require().Len(s.products.callsTo(http.MethodGet, "/products"), 1)

	// сессия легла в слот
	raw, err := s.slot.Load(s.ctx)
	s.Require().NoError(err)
	s.Require().JSONEq(`{"email":"a@b.com","token":"T1"}`, string(raw))

	s.Require().Equal(recordedAlert{Message: "Login successful!", Kind: model.AlertSuccess}, s.alerts.alerts[0])
}

func (s *ControllerSuite) TestLogin_BadCredentials() {
	s.users.respond = func(c call) (int, string) {
		return http.StatusUnauthorized, `{"detail":"bad credentials"}`
	}
	before := State{Screen: model.ScreenLogin}

	st := s.ctrl.Login(s.ctx, before, "a@b.com", "x")

	s.Require().Equal(before, st)
	s.Require().Equal(recordedAlert{Message: "bad credentials", Kind: model.AlertError}, s.alerts.last())
	s.Require().Zero(s.products.total())

	_, err := s.slot.Load(s.ctx)
	s.Require().ErrorIs(err, repository.ErrSlotEmpty)
}

func (s *ControllerSuite) TestLogin_FailureWithoutDetail() {
	s.users.respond = func(c call) (int, string) { return http.StatusInternalServerError, `` }

	st := s.ctrl.Login(s.ctx, State{Screen: model.ScreenLogin}, "a@b.com", "x")

	s.Require().Equal(model.ScreenLogin, st.Screen)
	s.Require().Equal("Login failed", s.alerts.last().Message)
}

func (s *ControllerSuite) TestLogin_ServiceDown() {
	s.users.srv.Close()

	st := s.ctrl.Login(s.ctx, State{Screen: model.ScreenLogin}, "a@b.com", "x")

	s.Require().Equal(model.ScreenLogin, st.Screen)
	s.Require().Equal("Error connecting to server", s.alerts.last().Message)
}

func (s *ControllerSuite) TestLogin_EmptyCredentialsNoRequest() {
	st := s.ctrl.Login(s.ctx, State{Screen: model.ScreenLogin}, "  ", "")

	s.Require().Equal(model.ScreenLogin, st.Screen)
	s.Require().Zero(s.users.total())
	s.Require().Equal(model.AlertError, s.alerts.last().Kind)
}

func (s *ControllerSuite) TestRegister() {
	st := s.ctrl.ShowRegister(State{Screen: model.ScreenLogin})
	s.Require().Equal(model.ScreenRegister, st.Screen)

	s.users.respond = func(c call) (int, string) { return http.StatusBadRequest, `{}` }
	st = s.ctrl.Register(s.ctx, st, "a@b.com", "x")
	s.Require().Equal(model.ScreenRegister, st.Screen)
	s.Require().Equal("Registration failed", s.alerts.last().Message)

	s.users.respond = func(c call) (int, string) {
		return http.StatusOK, `{"message":"User registered successfully"}`
	}
	st = s.ctrl.Register(s.ctx, st, "a@b.com", "x")
	s.Require().Equal(model.ScreenLogin, st.Screen)
	s.Require().Nil(st.Session)
	s.Require().Equal(recordedAlert{Message: "Registration successful! Please login.", Kind: model.AlertSuccess}, s.alerts.last())

	regs := s.users.callsTo(http.MethodPost, "/register")
	s.Require().Len(regs, 2)
	s.Require().JSONEq(`{"email":"a@b.com","password":"x"}`, regs[1].Body)
}

func (s *ControllerSuite) TestToggles_IgnoredInMainMode() {
	s.Require().Equal(s.loggedIn, s.ctrl.ShowRegister(s.loggedIn))
	s.Require().Equal(s.loggedIn, s.ctrl.ShowLogin(s.loggedIn))
	s.Require().Equal(model.ScreenLogin, s.ctrl.ShowLogin(State{Screen: model.ScreenRegister}).Screen)
}

func (s *ControllerSuite) TestLogout() {
	s.Require().NoError(s.store.Save(s.ctx, *s.loggedIn.Session))

	st := s.ctrl.Logout(s.ctx, s.withDraft(7, 10))

	s.Require().Equal(State{Screen: model.ScreenLogin}, st)
	_, err := s.slot.Load(s.ctx)
	s.Require().ErrorIs(err, repository.ErrSlotEmpty)
}

func (s *ControllerSuite) TestSwitchTab_AlwaysRefetches() {
	s.orders.respond = func(c call) (int, string) {
		return http.StatusOK, `[{"id":1,"product_id":7,"quantity":3,"status":"pending"}]`
	}

	st := s.ctrl.SwitchTab(s.ctx, s.loggedIn, TabOrders)
	s.Require().Equal(model.ScreenOrders, st.Screen)
	s.Require().Equal([]model.Order{{ID: 1, ProductID: 7, Quantity: 3, Status: "pending"}}, st.Orders)

	st = s.ctrl.SwitchTab(s.ctx, st, TabOrders)
	s.Require().Len(s.orders.callsTo(http.MethodGet, "/orders"), 2)

	st = s.ctrl.SwitchTab(s.ctx, st, TabProducts)
	s.Require().Equal(model.ScreenProducts, st.Screen)
	s.Require().Len(s.products.callsTo(http.MethodGet, "/products"), 1)
}

func (s *ControllerSuite) TestSwitchTab_Unknown() {
	st := s.ctrl.SwitchTab(s.ctx, s.loggedIn, "settings")

	s.Require().Equal(s.loggedIn, st)
	s.Require().Equal("Unknown tab", s.alerts.last().Message)
	s.Require().Zero(s.products.total() + s.orders.total())
}

func (s *ControllerSuite) TestMainActions_IgnoredWithoutSession() {
	st := State{Screen: model.ScreenLogin}

	s.Require().Equal(st, s.ctrl.SwitchTab(s.ctx, st, TabOrders))
	s.Require().Equal(st, s.ctrl.Search(s.ctx, st, "tea"))
	s.Require().Equal(st, s.ctrl.AddProduct(s.ctx, st, ProductForm{Name: "Tea", Price: "1", Quantity: "1"}))
	s.Require().Equal(st, s.ctrl.OpenDraft(st, DraftForm{ProductID: "7", MaxQuantity: "3"}))
	s.Require().Equal(st, s.ctrl.SubmitDraft(s.ctx, st, "1"))

	s.Require().Zero(s.products.total() + s.orders.total())
}

func (s *ControllerSuite) TestSearch() {
	s.products.respond = func(c call) (int, string) {
		return http.StatusOK, `[{"id":7,"name":"green tea","price":3.5,"quantity":10}]`
	}

	st := s.ctrl.Search(s.ctx, s.loggedIn, "green tea")

	searches := s.products.callsTo(http.MethodGet, "/products/search")
	s.Require().Len(searches, 1)
	s.Require().Equal("green tea", searches[0].Query)
	s.Require().Equal("green tea", st.SearchTerm)
	s.Require().Len(st.Products, 1)
}

func (s *ControllerSuite) TestLoadProductsFailure_KeepsLastList() {
	st := s.loggedIn
	st.Products = []model.Product{{ID: 1, Name: "Old"}}
	s.products.respond = func(c call) (int, string) { return http.StatusInternalServerError, `` }

	st = s.ctrl.SwitchTab(s.ctx, st, TabProducts)

	s.Require().Equal([]model.Product{{ID: 1, Name: "Old"}}, st.Products)
	s.Require().Equal("Error loading products", s.alerts.last().Message)
}

func (s *ControllerSuite) TestAddProduct() {
	st := s.ctrl.AddProduct(s.ctx, s.loggedIn, ProductForm{
		Name:        " Tea ",
		Description: "Green",
		Price:       "3.50",
		Quantity:    "12",
	})

	adds := s.products.callsTo(http.MethodPost, "/products/add")
	s.Require().Len(adds, 1)
	s.Require().JSONEq(`[{"name":"Tea","description":"Green","price":3.5,"quantity":12}]`, adds[0].Body)
	s.Require().Len(s.products.callsTo(http.MethodGet, "/products"), 1)
	s.Require().Equal(model.ScreenProducts, st.Screen)
	s.Require().Equal(recordedAlert{Message: "Product added successfully!", Kind: model.AlertSuccess}, s.alerts.alerts[0])
}

func (s *ControllerSuite) TestAddProduct_Validation() {
	forms := []ProductForm{
		{Name: "", Price: "1", Quantity: "1"},
		{Name: "Tea", Price: "cheap", Quantity: "1"},
		{Name: "Tea", Price: "-1", Quantity: "1"},
		{Name: "Tea", Price: "NaN", Quantity: "1"},
		{Name: "Tea", Price: "1", Quantity: "-2"},
		{Name: "Tea", Price: "1", Quantity: "1.5"},
	}

	for _, form := range forms {
		st := s.ctrl.AddProduct(s.ctx, s.loggedIn, form)
		s.Require().Equal(s.loggedIn, st)
		s.Require().Equal(model.AlertError, s.alerts.last().Kind)
	}
	s.Require().Zero(s.products.total())
	s.Require().Len(s.alerts.alerts, len(forms))
}

func (s *ControllerSuite) TestAddProduct_ServerError() {
	s.products.respond = func(c call) (int, string) {
		if c.Path == "/products/add" {
			return http.StatusUnprocessableEntity, `{"detail":[{"msg":"price must be positive"}]}`
		}
		return http.StatusOK, `[]`
	}

	s.ctrl.AddProduct(s.ctx, s.loggedIn, ProductForm{Name: "Tea", Price: "0", Quantity: "1"})

	s.Require().Equal("price must be positive", s.alerts.last().Message)
	s.Require().Empty(s.products.callsTo(http.MethodGet, "/products"))
}

func (s *ControllerSuite) TestOpenAndCancelDraft() {
	st := s.ctrl.OpenDraft(s.loggedIn, DraftForm{ProductID: "7", ProductName: "Tea", MaxQuantity: "10"})
	s.Require().Equal(&model.Draft{ProductID: 7, ProductName: "Tea", MaxQuantity: 10}, st.Draft)

	// второй черновик заменяет первый
	st = s.ctrl.OpenDraft(st, DraftForm{ProductID: "8", ProductName: "Mug", MaxQuantity: "2"})
	s.Require().Equal(int64(8), st.Draft.ProductID)

	st = s.ctrl.CancelDraft(st)
	s.Require().Nil(st.Draft)
	s.Require().Zero(s.orders.total())
}

func (s *ControllerSuite) TestOpenDraft_BadForm() {
	st := s.ctrl.OpenDraft(s.loggedIn, DraftForm{ProductID: "x", MaxQuantity: "10"})
	s.Require().Nil(st.Draft)

	st = s.ctrl.OpenDraft(s.loggedIn, DraftForm{ProductID: "7", MaxQuantity: "-1"})
	s.Require().Nil(st.Draft)
	s.Require().Equal("Invalid product selected", s.alerts.last().Message)
}

func (s *ControllerSuite) TestSubmitDraft_Success() {
	s.orders.respond = func(c call) (int, string) {
		return http.StatusCreated, `{"id":101,"product_id":7,"quantity":3,"status":"pending"}`
	}

	st := s.ctrl.SubmitDraft(s.ctx, s.withDraft(7, 10), "3")

	placed := s.orders.callsTo(http.MethodPost, "/order")
	s.Require().Len(placed, 1)

	var body map[string]int
	s.Require().NoError(json.Unmarshal([]byte(placed[0].Body), &body))
	s.Require().Equal(map[string]int{"product_id": 7, "quantity": 3}, body)

	s.Require().Nil(st.Draft)
	s.Require().Equal(recordedAlert{Message: "Order placed successfully!", Kind: model.AlertSuccess}, s.alerts.alerts[0])
	s.Require().Len(s.products.callsTo(http.MethodGet, "/products"), 1)
}

func (s *ControllerSuite) TestSubmitDraft_InvalidQuantityNoRequest() {
	inputs := []string{"0", "", "abc", "-1", "3.5", "3abc", " ", "11"}

	for _, raw := range inputs {
		st := s.ctrl.SubmitDraft(s.ctx, s.withDraft(7, 10), raw)
		s.Require().NotNil(st.Draft, raw)
		s.Require().Equal(model.AlertError, s.alerts.last().Kind, raw)
	}

	s.Require().Zero(s.orders.total())
	s.Require().Equal("Requested quantity exceeds available stock", s.alerts.last().Message)
	s.Require().Equal("Please enter a valid quantity", s.alerts.alerts[0].Message)
}

func (s *ControllerSuite) TestSubmitDraft_ServiceRejects() {
	s.orders.respond = func(c call) (int, string) {
		return http.StatusBadRequest, `{"detail":"Not enough stock"}`
	}
	draft := s.withDraft(7, 10)

	st := s.ctrl.SubmitDraft(s.ctx, draft, "3")

	s.Require().Equal(draft.Draft, st.Draft)
	s.Require().Equal(recordedAlert{Message: "Not enough stock", Kind: model.AlertError}, s.alerts.last())
	s.Require().Zero(s.products.total())
}

func (s *ControllerSuite) TestSubmitDraft_ServiceDown() {
	s.orders.srv.Close()

	st := s.ctrl.SubmitDraft(s.ctx, s.withDraft(7, 10), "3")

	s.Require().NotNil(st.Draft)
	s.Require().Equal("Error placing order", s.alerts.last().Message)
}

func (s *ControllerSuite) TestSubmitDraft_WithoutDraft() {
	st := s.ctrl.SubmitDraft(s.ctx, s.loggedIn, "3")

	s.Require().Nil(st.Draft)
	s.Require().Equal("No order in progress", s.alerts.last().Message)
	s.Require().Zero(s.orders.total())
}

// Двойной submit не гасится: оба запроса уходят в сервис
func (s *ControllerSuite) TestSubmitDraft_DuplicateSubmissionsBothSent() {
	s.orders.respond = func(c call) (int, string) { return http.StatusCreated, `{"id":1}` }
	draft := s.withDraft(7, 10)

	s.ctrl.SubmitDraft(s.ctx, draft, "1")
	s.ctrl.SubmitDraft(s.ctx, draft, "1")

	s.Require().Len(s.orders.callsTo(http.MethodPost, "/order"), 2)
}
