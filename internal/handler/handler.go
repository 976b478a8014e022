package handler

import (
	"bytes"
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/squaredbusinessman/storefront-client/internal/logger"
	"github.com/squaredbusinessman/storefront-client/internal/model"
	"github.com/squaredbusinessman/storefront-client/internal/service"
	"github.com/squaredbusinessman/storefront-client/internal/view"
)

const contentTextHTML = "text/html; charset=utf-8"

// Storefront операции контроллера, которые дергает UI
type Storefront interface {
	ShowLogin(st service.State) service.State
	ShowRegister(st service.State) service.State
	Register(ctx context.Context, st service.State, email, password string) service.State
	Login(ctx context.Context, st service.State, email, password string) service.State
	Logout(ctx context.Context, st service.State) service.State
	SwitchTab(ctx context.Context, st service.State, tab string) service.State
	Search(ctx context.Context, st service.State, term string) service.State
	AddProduct(ctx context.Context, st service.State, form service.ProductForm) service.State
	OpenDraft(st service.State, form service.DraftForm) service.State
	CancelDraft(st service.State) service.State
	SubmitDraft(ctx context.Context, st service.State, rawQuantity string) service.State
}

type AlertBoard interface {
	Snapshot() []view.Alert
	Dismiss(id string) bool
}

// Handler единственный владелец State. Мьютекс держится только на копирование и запись State,
// поход в сервисы идет без него: медленный бэкенд не вешает страницу и соседние действия.
type Handler struct {
	mu     sync.Mutex
	state  service.State
	ctrl   Storefront
	alerts AlertBoard
}

func NewHandler(ctrl Storefront, alerts AlertBoard, initial service.State) *Handler {
	if ctrl == nil {
		panic("nil storefront controller")
	}
	if alerts == nil {
		panic("nil alert board")
	}
	return &Handler{
		state:  initial,
		ctrl:   ctrl,
		alerts: alerts,
	}
}

// HasSession для SessionGuard
func (h *Handler) HasSession() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.LoggedIn()
}

// Screen для access лога
func (h *Handler) Screen() model.Screen {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.Screen
}

// State копия текущего состояния
func (h *Handler) State() service.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// apply: два одновременных действия работают каждое со своей копией, побеждает последнее записанное.
// Повторный submit не ждет первого, оба запроса уходят в сервис.
func (h *Handler) apply(writer http.ResponseWriter, request *http.Request, fn func(st service.State) service.State) {
	next := fn(h.State())

	h.mu.Lock()
	h.state = next
	h.mu.Unlock()

	http.Redirect(writer, request, "/", http.StatusSeeOther)
}

func (h *Handler) Index(writer http.ResponseWriter, request *http.Request) {
	st := h.State()

	page := view.Page{
		Screen:     st.Screen,
		SearchTerm: st.SearchTerm,
		Products:   st.Products,
		Orders:     st.Orders,
		Draft:      st.Draft,
		Alerts:     h.alerts.Snapshot(),
	}
	if st.Session != nil {
		page.Email = st.Session.Email
	}

	// рендерим в буфер, чтобы при ошибке шаблона не отдать половину страницы
	var buf bytes.Buffer
	if err := view.RenderPage(&buf, page); err != nil {
		logger.Log.Error("render page", zap.Error(err))
		http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", contentTextHTML)
	writer.Header().Set("Cache-Control", "no-store")
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write(buf.Bytes())
}

func (h *Handler) Healthz(writer http.ResponseWriter, _ *http.Request) {
	writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write([]byte("ok"))
}

func (h *Handler) ShowLogin(writer http.ResponseWriter, request *http.Request) {
	h.apply(writer, request, h.ctrl.ShowLogin)
}

func (h *Handler) ShowRegister(writer http.ResponseWriter, request *http.Request) {
	h.apply(writer, request, h.ctrl.ShowRegister)
}

func (h *Handler) Login(writer http.ResponseWriter, request *http.Request) {
	if err := request.ParseForm(); err != nil {
		http.Error(writer, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	email, password := request.PostForm.Get("email"), request.PostForm.Get("password")

	h.apply(writer, request, func(st service.State) service.State {
		return h.ctrl.Login(request.Context(), st, email, password)
	})
}

func (h *Handler) Register(writer http.ResponseWriter, request *http.Request) {
	if err := request.ParseForm(); err != nil {
		http.Error(writer, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	email, password := request.PostForm.Get("email"), request.PostForm.Get("password")

	h.apply(writer, request, func(st service.State) service.State {
		return h.ctrl.Register(request.Context(), st, email, password)
	})
}

func (h *Handler) Logout(writer http.ResponseWriter, request *http.Request) {
	h.apply(writer, request, func(st service.State) service.State {
		return h.ctrl.Logout(request.Context(), st)
	})
}

func (h *Handler) SwitchTab(writer http.ResponseWriter, request *http.Request) {
	tab := chi.URLParam(request, "tab")

	h.apply(writer, request, func(st service.State) service.State {
		return h.ctrl.SwitchTab(request.Context(), st, tab)
	})
}

func (h *Handler) Search(writer http.ResponseWriter, request *http.Request) {
	term := request.URL.Query().Get("name")

	h.apply(writer, request, func(st service.State) service.State {
		return h.ctrl.Search(request.Context(), st, term)
	})
}

func (h *Handler) AddProduct(writer http.ResponseWriter, request *http.Request) {
	if err := request.ParseForm(); err != nil {
		http.Error(writer, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := service.ProductForm{
		Name:        request.PostForm.Get("name"),
		Description: request.PostForm.Get("description"),
		Price:       request.PostForm.Get("price"),
		Quantity:    request.PostForm.Get("quantity"),
	}

	h.apply(writer, request, func(st service.State) service.State {
		return h.ctrl.AddProduct(request.Context(), st, form)
	})
}

func (h *Handler) OpenDraft(writer http.ResponseWriter, request *http.Request) {
	if err := request.ParseForm(); err != nil {
		http.Error(writer, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := service.DraftForm{
		ProductID:   request.PostForm.Get("product_id"),
		ProductName: request.PostForm.Get("product_name"),
		MaxQuantity: request.PostForm.Get("max_quantity"),
	}

	h.apply(writer, request, func(st service.State) service.State {
		return h.ctrl.OpenDraft(st, form)
	})
}

func (h *Handler) CancelDraft(writer http.ResponseWriter, request *http.Request) {
	h.apply(writer, request, h.ctrl.CancelDraft)
}

func (h *Handler) SubmitDraft(writer http.ResponseWriter, request *http.Request) {
	if err := request.ParseForm(); err != nil {
		http.Error(writer, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	quantity := request.PostForm.Get("quantity")

	h.apply(writer, request, func(st service.State) service.State {
		return h.ctrl.SubmitDraft(request.Context(), st, quantity)
	})
}

func (h *Handler) DismissAlert(writer http.ResponseWriter, request *http.Request) {
	h.alerts.Dismiss(chi.URLParam(request, "id"))
	http.Redirect(writer, request, "/", http.StatusSeeOther)
}
