package store

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"github.com/smartassist/smartassist-api/models"
)

//go:embed seed/technicians.yaml
var techniciansYAML []byte

type seedTechnician struct {
	Name         string   `yaml:"name"`
	Email        string   `yaml:"email"`
	Phone        string   `yaml:"phone"`
	Bio          string   `yaml:"bio"`
	Specialties  []string `yaml:"specialties"`
	City         string   `yaml:"city"`
	State        string   `yaml:"state"`
	ZipCode      string   `yaml:"zipCode"`
	HourlyRate   float64  `yaml:"hourlyRate"`
	Rating       float64  `yaml:"rating"`
	TotalReviews int      `yaml:"totalReviews"`
	Verified     bool     `yaml:"verified"`
	Available    bool     `yaml:"available"`
}

type seedFile struct {
	Technicians []seedTechnician `yaml:"technicians"`
}

// SeedTechnicians parses the embedded technician list.
func SeedTechnicians() ([]models.Technician, error) {
	var file seedFile
	if err := yaml.Unmarshal(techniciansYAML, &file); err != nil {
		return nil, fmt.Errorf("failed to parse technician seed file: %w", err)
	}

	technicians := make([]models.Technician, 0, len(file.Technicians))
	for _, st := range file.Technicians {
		bio := st.Bio
		rate := st.HourlyRate
		technicians = append(technicians, models.Technician{
			Name:         st.Name,
			Email:        st.Email,
			Phone:        st.Phone,
			Bio:          &bio,
			Specialties:  datatypes.JSONSlice[string](st.Specialties),
			City:         st.City,
			State:        st.State,
			ZipCode:      st.ZipCode,
			HourlyRate:   &rate,
			Rating:       st.Rating,
			TotalReviews: st.TotalReviews,
			Verified:     st.Verified,
			Available:    st.Available,
		})
	}
	return technicians, nil
}

// Seed inserts the placeholder user and the sample technicians. Rows that already
// exist are left untouched.
func (s *gormStore) Seed(ctx context.Context, placeholderUserID string) error {
	// The placeholder account never signs in with a password.
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	user := models.User{
		ID:       placeholderUserID,
		Username: "demo_user",
		Email:    "demo@smartassist.ai",
		Password: string(hash),
		FullName: strPtr("Demo User"),
		Phone:    strPtr("(555) 123-4567"),
		Address:  strPtr("123 Main St"),
		City:     strPtr("San Francisco"),
		State:    strPtr("CA"),
		ZipCode:  strPtr("94102"),
	}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&user).Error; err != nil {
		return fmt.Errorf("failed to seed placeholder user: %w", err)
	}

	technicians, err := SeedTechnicians()
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(&technicians).Error; err != nil {
		return fmt.Errorf("failed to seed technicians: %w", err)
	}
	return nil
}

func strPtr(s string) *string {
	return &s
}
