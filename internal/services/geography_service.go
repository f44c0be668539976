package services

import (
	"errors"

	"github.com/okaz-app/okaz-backend/internal/dto"
	"github.com/okaz-app/okaz-backend/internal/models"
	"gorm.io/gorm"
)

// GeographyService manages the country and city reference data communities
// and user profiles point at.
type GeographyService struct {
	db *gorm.DB
}

func NewGeographyService(db *gorm.DB) *GeographyService {
	return &GeographyService{db: db}
}

func (s *GeographyService) CreateCountry(req *dto.CreateCountryRequest) (*models.Country, error) {
	country := models.Country{Name: req.Name}
	if err := s.db.Create(&country).Error; err != nil {
		return nil, err
	}
	return &country, nil
}

func (s *GeographyService) FindCountry(id uint) (*models.Country, error) {
	var country models.Country
	err := s.db.Preload("Cities").First(&country, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCountryNotFound
		}
		return nil, err
	}
	return &country, nil
}

func (s *GeographyService) ListCountries() ([]models.Country, error) {
	var countries []models.Country
	err := s.db.Order("name").Find(&countries).Error
	return countries, err
}

func (s *GeographyService) UpdateCountry(id uint, req *dto.UpdateCountryRequest) (*models.Country, error) {
	country, err := s.FindCountry(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(country).Update("name", req.Name).Error; err != nil {
		return nil, err
	}
	country.Name = req.Name
	return country, nil
}

func (s *GeographyService) DeleteCountry(id uint) error {
	country, err := s.FindCountry(id)
	if err != nil {
		return err
	}
	return s.db.Select("Cities").Delete(country).Error
}

func (s *GeographyService) CreateCity(req *dto.CreateCityRequest) (*models.City, error) {
	if _, err := s.FindCountry(req.CountryID); err != nil {
		return nil, err
	}
	city := models.City{Name: req.Name, CountryID: req.CountryID}
	if err := s.db.Create(&city).Error; err != nil {
		return nil, err
	}
	return s.FindCity(city.ID)
}

func (s *GeographyService) FindCity(id uint) (*models.City, error) {
	var city models.City
	err := s.db.Preload("Country").First(&city, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCityNotFound
		}
		return nil, err
	}
	return &city, nil
}

// ListCities returns cities, optionally scoped to one country.
func (s *GeographyService) ListCities(countryID uint) ([]models.City, error) {
	query := s.db.Preload("Country").Order("name")
	if countryID != 0 {
		query = query.Where("country_id = ?", countryID)
	}
	var cities []models.City
	err := query.Find(&cities).Error
	return cities, err
}

func (s *GeographyService) UpdateCity(id uint, req *dto.UpdateCityRequest) (*models.City, error) {
	city, err := s.FindCity(id)
	if err != nil {
		return nil, err
	}
	if req.CountryID != nil {
		if _, err := s.FindCountry(*req.CountryID); err != nil {
			return nil, err
		}
		city.CountryID = *req.CountryID
	}
	if req.Name != nil {
		city.Name = *req.Name
	}
	if err := s.db.Save(city).Error; err != nil {
		return nil, err
	}
	return s.FindCity(id)
}

func (s *GeographyService) DeleteCity(id uint) error {
	city, err := s.FindCity(id)
	if err != nil {
		return err
	}
	return s.db.Delete(city).Error
}
