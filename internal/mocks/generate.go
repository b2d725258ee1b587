package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Store --dir ../domain/snapshot --output domain/snapshot --outpkg snapshotmock --filename store_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Source --dir ../domain/prop --output domain/prop --outpkg propmock --filename source_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name IdentityProvider --dir ../domain/session --output domain/session --outpkg sessionmock --filename identity_provider_mock.go
