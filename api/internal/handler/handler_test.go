package handler_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Astemirdum/bookshelf/api/internal/errs"
	"github.com/Astemirdum/bookshelf/api/internal/filter"
	"github.com/Astemirdum/bookshelf/api/internal/handler"
	"github.com/Astemirdum/bookshelf/api/internal/model"
	"github.com/Astemirdum/bookshelf/pkg/auth"
	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	service_mocks "github.com/Astemirdum/bookshelf/api/internal/handler/mocks"
)

const (
	userToken  = "user-token"
	adminToken = "admin-token"
)

var (
	regular = model.User{ID: 1, Username: "user", Role: model.RoleUser}
	admin   = model.User{ID: 2, Username: "admin", Role: model.RoleAdmin}

	orwell = model.Book{ID: 2, Title: "1984", Author: "George Orwell", Pages: 328, Rating: 4.7, Price: 12.95}
)

const orwellJSON = `{"id":2,"title":"1984","author":"George Orwell","pages":328,"rating":4.7,"price":12.95}`

func ptr[T any](v T) *T { return &v }

type mocks struct {
	books *service_mocks.MockBookService
	users *service_mocks.MockUserService
	auth  *service_mocks.MockAuthService
}

// resolveTokens wires the two well-known tokens and rejects everything else.
func (m mocks) resolveTokens() {
	m.auth.EXPECT().Resolve(gomock.Any(), userToken).Return(regular, nil).AnyTimes()
	m.auth.EXPECT().Resolve(gomock.Any(), adminToken).Return(admin, nil).AnyTimes()
	m.auth.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(model.User{}, auth.ErrInvalidCredentials).AnyTimes()
}

type request struct {
	method      string
	target      string
	token       string
	body        string
	contentType string
}

type response struct {
	code int
	body string
}

type testCase struct {
	name         string
	mockBehavior func(m mocks)
	request      request
	response     response
}

func run(t *testing.T, tests []testCase) {
	t.Helper()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			m := mocks{
				books: service_mocks.NewMockBookService(c),
				users: service_mocks.NewMockUserService(c),
				auth:  service_mocks.NewMockAuthService(c),
			}
			m.resolveTokens()
			if tt.mockBehavior != nil {
				tt.mockBehavior(m)
			}
			log := zap.NewExample().Named("test")
			e := handler.New(m.books, m.users, m.auth, log).NewRouter(handler.RouterConfig{DisableSwagger: true})

			r := httptest.NewRequest(tt.request.method, tt.request.target, strings.NewReader(tt.request.body))
			contentType := tt.request.contentType
			if contentType == "" {
				contentType = echo.MIMEApplicationJSON
			}
			r.Header.Set(echo.HeaderContentType, contentType)
			if tt.request.token != "" {
				r.Header.Set(echo.HeaderAuthorization, "Bearer "+tt.request.token)
			}
			w := httptest.NewRecorder()

			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.code, w.Code)
			if tt.response.body != "" {
				require.Equal(t, tt.response.body, strings.Trim(w.Body.String(), "\n"))
			}
			if tt.response.code == http.StatusUnauthorized && tt.request.target != "/v1/users/auth" {
				require.Equal(t, "Bearer", w.Header().Get(echo.HeaderWWWAuthenticate))
			}
		})
	}
}

func TestHandler_Health(t *testing.T) {
	t.Parallel()
	run(t, []testCase{
		{
			name:     "ok",
			request:  request{method: http.MethodGet, target: "/v1/health"},
			response: response{code: http.StatusOK, body: `{"status":"ok"}`},
		},
	})
}

func TestHandler_Books(t *testing.T) {
	t.Parallel()
	run(t, []testCase{
		{
			name: "list with filter and default paging",
			mockBehavior: func(m mocks) {
				m.books.EXPECT().
					List(gomock.Any(), model.Page{Limit: 100, Page: 1}, filter.Filters{"pages_gt": int64(299)}).
					Return(model.ListResponse[model.Book]{Items: []model.Book{orwell}, TotalPages: 1}, nil)
			},
			request:  request{method: http.MethodGet, target: "/v1/books?pages_gt=299", token: userToken},
			response: response{code: http.StatusOK, body: `{"items":[` + orwellJSON + `],"total_pages":1}`},
		},
		{
			name: "list empty page",
			mockBehavior: func(m mocks) {
				m.books.EXPECT().
					List(gomock.Any(), model.Page{Limit: 2, Page: 5}, filter.Filters{}).
					Return(model.ListResponse[model.Book]{Items: []model.Book{}, TotalPages: 3}, nil)
			},
			request:  request{method: http.MethodGet, target: "/v1/books?limit=2&page=5", token: adminToken},
			response: response{code: http.StatusOK, body: `{"items":[],"total_pages":3}`},
		},
		{
			name:     "list without token",
			request:  request{method: http.MethodGet, target: "/v1/books"},
			response: response{code: http.StatusUnauthorized, body: `{"message":"Could not validate credentials"}`},
		},
		{
			name:     "list with bad token",
			request:  request{method: http.MethodGet, target: "/v1/books", token: "forged"},
			response: response{code: http.StatusUnauthorized, body: `{"message":"Could not validate credentials"}`},
		},
		{
			name:     "list zero limit",
			request:  request{method: http.MethodGet, target: "/v1/books?limit=0", token: userToken},
			response: response{code: http.StatusUnprocessableEntity},
		},
		{
			name:     "list page past the addressable range",
			request:  request{method: http.MethodGet, target: "/v1/books?limit=2&page=4611686018427387905", token: userToken},
			response: response{code: http.StatusUnprocessableEntity, body: `{"message":"page is out of range"}`},
		},
		{
			name:     "list bad filter value",
			request:  request{method: http.MethodGet, target: "/v1/books?rating_gt=7", token: userToken},
			response: response{code: http.StatusUnprocessableEntity},
		},
		{
			name: "get",
			mockBehavior: func(m mocks) {
				m.books.EXPECT().Get(gomock.Any(), int64(2)).Return(orwell, nil)
			},
			request:  request{method: http.MethodGet, target: "/v1/books/2", token: userToken},
			response: response{code: http.StatusOK, body: orwellJSON},
		},
		{
			name: "get missing",
			mockBehavior: func(m mocks) {
				m.books.EXPECT().Get(gomock.Any(), int64(9)).Return(model.Book{}, errs.ErrNotFound)
			},
			request:  request{method: http.MethodGet, target: "/v1/books/9", token: userToken},
			response: response{code: http.StatusNotFound, body: `{"message":"Book not found"}`},
		},
		{
			name:     "get bad id",
			request:  request{method: http.MethodGet, target: "/v1/books/0", token: userToken},
			response: response{code: http.StatusUnprocessableEntity},
		},
		{
			name: "create",
			mockBehavior: func(m mocks) {
				m.books.EXPECT().Create(gomock.Any(), model.BookCreate{
					Title: "1984", Author: "George Orwell", Pages: ptr(328), Rating: ptr(4.7), Price: ptr(12.95),
				}).Return(orwell, nil)
			},
			request: request{
				method: http.MethodPost, target: "/v1/books", token: adminToken,
				body: `{"title":"1984","author":"George Orwell","pages":328,"rating":4.7,"price":12.95}`,
			},
			response: response{code: http.StatusCreated, body: orwellJSON},
		},
		{
			name: "create as user",
			request: request{
				method: http.MethodPost, target: "/v1/books", token: userToken,
				body: `{"title":"1984","author":"George Orwell","pages":328,"rating":4.7,"price":12.95}`,
			},
			response: response{code: http.StatusForbidden, body: `{"message":"Unauthorized"}`},
		},
		{
			name: "create without token is 401 not 403",
			request: request{
				method: http.MethodPost, target: "/v1/books",
				body: `{"title":"1984"}`,
			},
			response: response{code: http.StatusUnauthorized},
		},
		{
			name: "create rating out of range",
			request: request{
				method: http.MethodPost, target: "/v1/books", token: adminToken,
				body: `{"title":"1984","author":"George Orwell","pages":328,"rating":6,"price":12.95}`,
			},
			response: response{code: http.StatusUnprocessableEntity},
		},
		{
			name: "create missing field",
			request: request{
				method: http.MethodPost, target: "/v1/books", token: adminToken,
				body: `{"title":"1984","author":"George Orwell","rating":4,"price":12.95}`,
			},
			response: response{code: http.StatusUnprocessableEntity},
		},
		{
			name: "create conflicting id",
			mockBehavior: func(m mocks) {
				m.books.EXPECT().Create(gomock.Any(), gomock.Any()).Return(model.Book{}, errs.ErrConflict)
			},
			request: request{
				method: http.MethodPost, target: "/v1/books", token: adminToken,
				body: `{"id":2,"title":"1984","author":"George Orwell","pages":328,"rating":4.7,"price":12.95}`,
			},
			response: response{code: http.StatusConflict, body: `{"message":"Conflict"}`},
		},
		{
			name: "update partial",
			mockBehavior: func(m mocks) {
				m.books.EXPECT().Update(gomock.Any(), int64(2), model.BookUpdate{Price: ptr(9.99)}).
					Return(model.Book{ID: 2, Title: "1984", Author: "George Orwell", Pages: 328, Rating: 4.7, Price: 9.99}, nil)
			},
			request: request{method: http.MethodPut, target: "/v1/books/2", token: adminToken, body: `{"price":9.99}`},
			response: response{
				code: http.StatusOK,
				body: `{"id":2,"title":"1984","author":"George Orwell","pages":328,"rating":4.7,"price":9.99}`,
			},
		},
		{
			name: "delete",
			mockBehavior: func(m mocks) {
				m.books.EXPECT().Delete(gomock.Any(), int64(2)).Return(orwell, nil)
			},
			request:  request{method: http.MethodDelete, target: "/v1/books/2", token: adminToken},
			response: response{code: http.StatusOK, body: orwellJSON},
		},
		{
			name: "internal error is hidden",
			mockBehavior: func(m mocks) {
				m.books.EXPECT().Delete(gomock.Any(), int64(2)).Return(model.Book{}, errors.New("db internal"))
			},
			request:  request{method: http.MethodDelete, target: "/v1/books/2", token: adminToken},
			response: response{code: http.StatusInternalServerError, body: `{"message":"Internal Server Error"}`},
		},
	})
}

func TestHandler_Users(t *testing.T) {
	t.Parallel()
	const userJSON = `{"id":1,"username":"user","email":null,"role":"USER"}`
	run(t, []testCase{
		{
			name: "list by role",
			mockBehavior: func(m mocks) {
				m.users.EXPECT().
					List(gomock.Any(), model.Page{Limit: 100, Page: 1}, filter.Filters{"role": "USER"}).
					Return(model.ListResponse[model.User]{Items: []model.User{regular}, TotalPages: 1}, nil)
			},
			request:  request{method: http.MethodGet, target: "/v1/users?role=USER", token: userToken},
			response: response{code: http.StatusOK, body: `{"items":[` + userJSON + `],"total_pages":1}`},
		},
		{
			name:     "list unknown role",
			request:  request{method: http.MethodGet, target: "/v1/users?role=ROOT", token: userToken},
			response: response{code: http.StatusUnprocessableEntity},
		},
		{
			name: "create as admin",
			mockBehavior: func(m mocks) {
				m.users.EXPECT().
					Create(gomock.Any(), model.UserCreateRequest{Username: "user", Password: "useruser"}).
					Return(regular, nil)
			},
			request:  request{method: http.MethodPost, target: "/v1/users", token: adminToken, body: `{"username":"user","password":"useruser"}`},
			response: response{code: http.StatusCreated, body: userJSON},
		},
		{
			name: "create duplicate",
			mockBehavior: func(m mocks) {
				m.users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(model.User{}, errs.ErrConflict)
			},
			request:  request{method: http.MethodPost, target: "/v1/users", token: adminToken, body: `{"username":"user","password":"useruser"}`},
			response: response{code: http.StatusConflict, body: `{"message":"Conflict"}`},
		},
		{
			name:     "create as user",
			request:  request{method: http.MethodPost, target: "/v1/users", token: userToken, body: `{"username":"x","password":"password1"}`},
			response: response{code: http.StatusForbidden, body: `{"message":"Unauthorized"}`},
		},
		{
			name:     "create invalid username",
			request:  request{method: http.MethodPost, target: "/v1/users", token: adminToken, body: `{"username":"bad name","password":"password1"}`},
			response: response{code: http.StatusUnprocessableEntity},
		},
		{
			name: "update self",
			mockBehavior: func(m mocks) {
				m.users.EXPECT().
					Update(gomock.Any(), int64(1), model.UserUpdateRequest{Password: ptr("newpassword")}).
					Return(regular, nil)
			},
			request:  request{method: http.MethodPut, target: "/v1/users/1", token: userToken, body: `{"password":"newpassword"}`},
			response: response{code: http.StatusOK, body: userJSON},
		},
		{
			name: "update clears email",
			mockBehavior: func(m mocks) {
				m.users.EXPECT().
					Update(gomock.Any(), int64(1), model.UserUpdateRequest{ClearEmail: true}).
					Return(regular, nil)
			},
			request:  request{method: http.MethodPut, target: "/v1/users/1", token: userToken, body: `{"email":null}`},
			response: response{code: http.StatusOK, body: userJSON},
		},
		{
			name:     "update other as user",
			request:  request{method: http.MethodPut, target: "/v1/users/2", token: userToken, body: `{"username":"hijack"}`},
			response: response{code: http.StatusForbidden, body: `{"message":"Unauthorized"}`},
		},
		{
			name:     "user promotes self",
			request:  request{method: http.MethodPut, target: "/v1/users/1", token: userToken, body: `{"role":"ADMIN"}`},
			response: response{code: http.StatusForbidden, body: `{"message":"Unauthorized"}`},
		},
		{
			name: "admin updates other",
			mockBehavior: func(m mocks) {
				m.users.EXPECT().
					Update(gomock.Any(), int64(1), model.UserUpdateRequest{Role: ptr(model.RoleAdmin)}).
					Return(model.User{ID: 1, Username: "user", Role: model.RoleAdmin}, nil)
			},
			request:  request{method: http.MethodPut, target: "/v1/users/1", token: adminToken, body: `{"role":"ADMIN"}`},
			response: response{code: http.StatusOK, body: `{"id":1,"username":"user","email":null,"role":"ADMIN"}`},
		},
		{
			name: "update missing",
			mockBehavior: func(m mocks) {
				m.users.EXPECT().Update(gomock.Any(), int64(7), gomock.Any()).Return(model.User{}, errs.ErrNotFound)
			},
			request:  request{method: http.MethodPut, target: "/v1/users/7", token: adminToken, body: `{"username":"ghost"}`},
			response: response{code: http.StatusNotFound, body: `{"message":"User not found"}`},
		},
		{
			name:     "update without token",
			request:  request{method: http.MethodPut, target: "/v1/users/1", body: `{"username":"x"}`},
			response: response{code: http.StatusUnauthorized},
		},
		{
			name:     "delete other as user",
			request:  request{method: http.MethodDelete, target: "/v1/users/2", token: userToken},
			response: response{code: http.StatusForbidden},
		},
		{
			name: "delete self",
			mockBehavior: func(m mocks) {
				m.users.EXPECT().Delete(gomock.Any(), int64(1)).Return(regular, nil)
			},
			request:  request{method: http.MethodDelete, target: "/v1/users/1", token: userToken},
			response: response{code: http.StatusOK, body: userJSON},
		},
	})
}

func TestHandler_Login(t *testing.T) {
	t.Parallel()
	form := url.Values{"username": {"user"}, "password": {"useruser"}}.Encode()
	run(t, []testCase{
		{
			name: "form",
			mockBehavior: func(m mocks) {
				m.auth.EXPECT().Login(gomock.Any(), "user", "useruser").
					Return(model.TokenResponse{AccessToken: "jwt", TokenType: "bearer", User: regular}, nil)
			},
			request: request{
				method: http.MethodPost, target: "/v1/users/auth",
				body: form, contentType: echo.MIMEApplicationForm,
			},
			response: response{
				code: http.StatusOK,
				body: `{"access_token":"jwt","token_type":"bearer","user":{"id":1,"username":"user","email":null,"role":"USER"}}`,
			},
		},
		{
			name: "json",
			mockBehavior: func(m mocks) {
				m.auth.EXPECT().Login(gomock.Any(), "user@example.com", "useruser").
					Return(model.TokenResponse{AccessToken: "jwt", TokenType: "bearer", User: regular}, nil)
			},
			request:  request{method: http.MethodPost, target: "/v1/users/auth", body: `{"username":"user@example.com","password":"useruser"}`},
			response: response{code: http.StatusOK},
		},
		{
			name: "wrong password",
			mockBehavior: func(m mocks) {
				m.auth.EXPECT().Login(gomock.Any(), "user", "useruser").
					Return(model.TokenResponse{}, auth.ErrInvalidCredentials)
			},
			request: request{
				method: http.MethodPost, target: "/v1/users/auth",
				body: form, contentType: echo.MIMEApplicationForm,
			},
			response: response{code: http.StatusUnauthorized, body: `{"message":"Invalid credentials"}`},
		},
		{
			name:     "missing password",
			request:  request{method: http.MethodPost, target: "/v1/users/auth", body: `{"username":"user"}`},
			response: response{code: http.StatusUnprocessableEntity},
		},
	})
}
