// Package mocks holds gomock doubles for the interfaces the run controller
// depends on.
package mocks

//go:generate mockgen -destination=mock_executor.go -package=mocks github.com/vk/experimentor/internal/executor Executor
//go:generate mockgen -destination=mock_observer.go -package=mocks github.com/vk/experimentor/internal/progress Observer
