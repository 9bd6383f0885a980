package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/CameronXie/nsa-protrack/internal/api/rest/response"
	"github.com/CameronXie/nsa-protrack/internal/domain"
	"github.com/CameronXie/nsa-protrack/internal/repository"
)

func newTestOrderHandler(repo OrderRepository) *OrderHandler {
	h := NewOrderHandler(repo, discardLogger())
	h.now = fixedNow
	return h
}

func validOrderBody() map[string]any {
	return map[string]any{
		"fileNumber":  "F-1001",
		"signingType": "Refinance",
		"fee":         150,
		"appointment": map[string]any{
			"date": "2026-03-04",
			"time": "10:00 AM",
		},
		"signer":       map[string]any{"name": "Jane Doe"},
		"instructions": "Bring two forms of ID",
	}
}

func storedOrder(id uuid.UUID) *domain.Order {
	createdAt := testNow.Add(-48 * time.Hour)
	o := &domain.Order{
		ID:          id,
		UserID:      testUserID,
		FileNumber:  "F-1001",
		Status:      domain.OrderStatusPending,
		SigningType: domain.SigningTypePurchase,
		Fee:         125,
		Appointment: domain.Appointment{
			Date: domain.NewDate(testNow),
			Time: "2:00 PM",
		},
		Signer:       domain.Signer{Name: "Jane Doe"},
		Instructions: "Sign in blue ink",
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	o.ApplyDefaults()
	return o
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	testCases := map[string]struct {
		body           any
		setupMock      func(*mockOrderRepository)
		expectedStatus int
		expectedFields []string
	}{
		"should create order with defaults applied": {
			body: validOrderBody(),
			setupMock: func(m *mockOrderRepository) {
				m.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
					return o.UserID == testUserID &&
						o.ID != uuid.Nil &&
						o.Status == domain.OrderStatusPending &&
						o.Signer.Language == domain.DefaultLanguage &&
						o.Appointment.Location.Type == domain.GeoPointType &&
						o.CreatedAt.Equal(testNow) &&
						o.UpdatedAt.Equal(testNow)
				})).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		"should store the canonical status whatever its case": {
			body: func() map[string]any {
				b := validOrderBody()
				b["status"] = "COMPLETED"
				return b
			}(),
			setupMock: func(m *mockOrderRepository) {
				m.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
					return o.Status == domain.OrderStatusCompleted
				})).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		"should reject an unknown status": {
			body: func() map[string]any {
				b := validOrderBody()
				b["status"] = "archived"
				return b
			}(),
			setupMock:      func(_ *mockOrderRepository) {},
			expectedStatus: http.StatusBadRequest,
			expectedFields: []string{"status"},
		},
		"should return field errors when required fields are missing": {
			body:           map[string]any{"fee": -5},
			setupMock:      func(_ *mockOrderRepository) {},
			expectedStatus: http.StatusBadRequest,
			expectedFields: []string{"fileNumber", "signingType", "fee", "appointment.date", "appointment.time", "signer.name", "instructions"},
		},
		"should return bad request when body is not json": {
			body:           "{not json",
			setupMock:      func(_ *mockOrderRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		"should return internal server error when repository fails": {
			body: validOrderBody(),
			setupMock: func(m *mockOrderRepository) {
				m.On("CreateOrder", mock.Anything, mock.Anything).Return(assert.AnError)
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			repo := new(mockOrderRepository)
			tc.setupMock(repo)

			rr := httptest.NewRecorder()
			newTestOrderHandler(repo).CreateOrder(rr, newRequest(t, http.MethodPost, "/api/v1/orders", tc.body))

			assert.Equal(t, tc.expectedStatus, rr.Code)
			if len(tc.expectedFields) > 0 {
				body := decodeBody[response.ErrorResponse](t, rr)
				for _, f := range tc.expectedFields {
					assert.Contains(t, body.Fields, f)
				}
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_ListOrders(t *testing.T) {
	testCases := map[string]struct {
		query          string
		expectedFilter *repository.OrderFilter
		expectedStatus int
	}{
		"should list all orders without filters": {
			expectedFilter: &repository.OrderFilter{},
			expectedStatus: http.StatusOK,
		},
		"should pass status and date range to the repository": {
			query: "?status=Completed&from=2026-01-01&to=2026-01-31",
			expectedFilter: &repository.OrderFilter{
				Status: domain.OrderStatusCompleted,
				From:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
				To:     time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
			},
			expectedStatus: http.StatusOK,
		},
		"should reject an unknown status": {
			query:          "?status=archived",
			expectedStatus: http.StatusBadRequest,
		},
		"should reject a malformed date": {
			query:          "?from=yesterday",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			repo := new(mockOrderRepository)
			if tc.expectedFilter != nil {
				repo.On("ListOrders", mock.Anything, testUserID, *tc.expectedFilter).Return([]*domain.Order{}, nil)
			}

			rr := httptest.NewRecorder()
			newTestOrderHandler(repo).ListOrders(rr, newRequest(t, http.MethodGet, "/api/v1/orders"+tc.query, nil))

			assert.Equal(t, tc.expectedStatus, rr.Code)
			repo.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_NearbyOrders(t *testing.T) {
	testCases := map[string]struct {
		query          string
		setupMock      func(*mockOrderRepository)
		expectedStatus int
	}{
		"should default the radius to 50 km": {
			query: "?lng=-118.24&lat=34.05",
			setupMock: func(m *mockOrderRepository) {
				m.On("ListOrdersNear", mock.Anything, testUserID, -118.24, 34.05, 50.0).Return([]*domain.Order{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		"should use the requested radius": {
			query: "?lng=-118.24&lat=34.05&radius=10",
			setupMock: func(m *mockOrderRepository) {
				m.On("ListOrdersNear", mock.Anything, testUserID, -118.24, 34.05, 10.0).Return([]*domain.Order{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		"should require both coordinates": {
			query:          "?lng=-118.24",
			setupMock:      func(_ *mockOrderRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		"should reject an out of range latitude": {
			query:          "?lng=10&lat=91",
			setupMock:      func(_ *mockOrderRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		"should reject coordinates that are not finite": {
			query:          "?lng=NaN&lat=NaN&radius=Inf",
			setupMock:      func(_ *mockOrderRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		"should reject an infinite radius": {
			query:          "?lng=10&lat=10&radius=%2BInf",
			setupMock:      func(_ *mockOrderRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		"should reject a non positive radius": {
			query:          "?lng=10&lat=10&radius=0",
			setupMock:      func(_ *mockOrderRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			repo := new(mockOrderRepository)
			tc.setupMock(repo)

			rr := httptest.NewRecorder()
			newTestOrderHandler(repo).NearbyOrders(rr, newRequest(t, http.MethodGet, "/api/v1/orders/nearby"+tc.query, nil))

			assert.Equal(t, tc.expectedStatus, rr.Code)
			repo.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_GetOrder(t *testing.T) {
	orderID := uuid.New()

	testCases := map[string]struct {
		id             string
		setupMock      func(*mockOrderRepository)
		expectedStatus int
	}{
		"should return the order": {
			id: orderID.String(),
			setupMock: func(m *mockOrderRepository) {
				m.On("GetOrderByID", mock.Anything, testUserID, orderID).Return(storedOrder(orderID), nil)
			},
			expectedStatus: http.StatusOK,
		},
		"should return bad request for an invalid id": {
			id:             "not-a-uuid",
			setupMock:      func(_ *mockOrderRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		"should return not found for another owner's order": {
			id: orderID.String(),
			setupMock: func(m *mockOrderRepository) {
				m.On("GetOrderByID", mock.Anything, testUserID, orderID).
					Return(nil, &repository.NotFoundError{Resource: "order", Key: "id", Value: orderID.String()})
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			repo := new(mockOrderRepository)
			tc.setupMock(repo)

			rr := httptest.NewRecorder()
			req := withID(newRequest(t, http.MethodGet, "/api/v1/orders/"+tc.id, nil), tc.id)
			newTestOrderHandler(repo).GetOrder(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			repo.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_UpdateOrder(t *testing.T) {
	orderID := uuid.New()
	existing := storedOrder(orderID)
	createdAt := existing.CreatedAt

	repo := new(mockOrderRepository)
	repo.On("GetOrderByID", mock.Anything, testUserID, orderID).Return(existing, nil)
	repo.On("UpdateOrder", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
		return o.ID == orderID &&
			o.UserID == testUserID &&
			o.Fee == 200 &&
			o.FileNumber == "F-1001" &&
			o.CreatedAt.Equal(createdAt) &&
			o.UpdatedAt.Equal(testNow)
	})).Return(nil)

	body := map[string]any{"fee": 200, "id": uuid.NewString(), "user": uuid.NewString()}
	rr := httptest.NewRecorder()
	req := withID(newRequest(t, http.MethodPut, "/api/v1/orders/"+orderID.String(), body), orderID.String())
	newTestOrderHandler(repo).UpdateOrder(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	repo.AssertExpectations(t)
}

func TestOrderHandler_UpdateOrderStatus(t *testing.T) {
	orderID := uuid.New()

	testCases := map[string]struct {
		body           any
		setupMock      func(*mockOrderRepository)
		expectedStatus int
	}{
		"should update the status": {
			body: map[string]any{"status": "completed"},
			setupMock: func(m *mockOrderRepository) {
				m.On("GetOrderByID", mock.Anything, testUserID, orderID).Return(storedOrder(orderID), nil)
				m.On("UpdateOrder", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
					return o.Status == domain.OrderStatusCompleted
				})).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		"should reject an unknown status": {
			body:           map[string]any{"status": "archived"},
			setupMock:      func(_ *mockOrderRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			repo := new(mockOrderRepository)
			tc.setupMock(repo)

			rr := httptest.NewRecorder()
			req := withID(newRequest(t, http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/status", tc.body), orderID.String())
			newTestOrderHandler(repo).UpdateOrderStatus(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			repo.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_ConfirmOrder(t *testing.T) {
	orderID := uuid.New()

	repo := new(mockOrderRepository)
	repo.On("GetOrderByID", mock.Anything, testUserID, orderID).Return(storedOrder(orderID), nil)
	repo.On("UpdateOrder", mock.Anything, mock.Anything).Return(nil)

	body := map[string]any{"confirmedBy": "phone", "notes": "Signer prefers mornings", "messageLeft": true}
	rr := httptest.NewRecorder()
	req := withID(newRequest(t, http.MethodPost, "/api/v1/orders/"+orderID.String()+"/confirm", body), orderID.String())
	newTestOrderHandler(repo).ConfirmOrder(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	got := decodeBody[domain.Order](t, rr)
	assert.Equal(t, domain.OrderStatusConfirmed, got.Status)
	if assert.NotNil(t, got.ConfirmationDetails) {
		assert.Equal(t, "phone", got.ConfirmationDetails.ConfirmedBy)
		assert.True(t, got.ConfirmationDetails.MessageLeft)
		assert.True(t, got.ConfirmationDetails.ConfirmedAt.Equal(testNow))
	}
	repo.AssertExpectations(t)
}

func TestOrderHandler_DeleteOrder(t *testing.T) {
	orderID := uuid.New()

	testCases := map[string]struct {
		err            error
		expectedStatus int
	}{
		"should return no content when deleted": {
			expectedStatus: http.StatusNoContent,
		},
		"should return not found when the order does not exist": {
			err:            &repository.NotFoundError{Resource: "order", Key: "id", Value: orderID.String()},
			expectedStatus: http.StatusNotFound,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			repo := new(mockOrderRepository)
			repo.On("DeleteOrder", mock.Anything, testUserID, orderID).Return(tc.err)

			rr := httptest.NewRecorder()
			req := withID(newRequest(t, http.MethodDelete, "/api/v1/orders/"+orderID.String(), nil), orderID.String())
			newTestOrderHandler(repo).DeleteOrder(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			repo.AssertExpectations(t)
		})
	}
}
