// Package mocks holds gomock doubles for the panel's ports.
//
// To regenerate after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	api := mocks.NewMockAPI(ctrl)
//	api.EXPECT().Items(gomock.Any()).Return(items, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=api_mock.go github.com/idilsaglam/adminpanel/internal/app API
