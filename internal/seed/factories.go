package seed

import (
	"fmt"
	"strings"
	"time"

	"terrascore/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
)

// demoPasswordHash is shared by all generated accounts so demo logins work
// with a single well-known password.
var demoPasswordHash string

func init() {
	hash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	demoPasswordHash = string(hash)
}

func fakeUsername() string {
	return strings.ToLower(fmt.Sprintf("%s_%s%d", gofakeit.Word(), gofakeit.Word(), gofakeit.Number(1, 999)))
}

func fakeCompanyName() string {
	suffixes := []string{"Mining Ltd", "Resources SA", "Minerals Corp", "Extractive Pty"}
	return fmt.Sprintf("%s %s", gofakeit.City(), suffixes[gofakeit.Number(0, len(suffixes)-1)])
}

// FakeRegistrationRequest builds a randomized pending registration request.
func FakeRegistrationRequest() *models.RegistrationRequest {
	role := models.RoleUser
	companyName := fakeCompanyName()
	address := gofakeit.Address().Address
	if gofakeit.Number(1, 4) == 1 {
		role = models.RoleAuditor
		companyName = ""
		address = ""
	}

	return &models.RegistrationRequest{
		Username:     fakeUsername(),
		Email:        gofakeit.Email(),
		PasswordHash: demoPasswordHash,
		Role:         role,
		CompanyName:  companyName,
		Address:      address,
		Status:       models.RequestStatusPending,
		RequestedAt:  gofakeit.DateRange(time.Now().Add(-30*24*time.Hour), time.Now()),
	}
}

// FakeUser builds a randomized approved account.
func FakeUser(role models.Role) *models.User {
	return &models.User{
		Username: fakeUsername(),
		Email:    gofakeit.Email(),
		Password: demoPasswordHash,
		Role:     role,
	}
}
