package ports

//go:generate mockery --name TokenService --dir . --output ../../../../mocks/token --outpkg mocks --filename TokenService.go
type TokenService interface {
	Issue(userID int64) (string, error)
	Verify(token string) (int64, error)
}
