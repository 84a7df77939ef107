package dataset

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MySQLConfig holds connection settings for the price database.
type MySQLConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN builds the go-sql-driver connection string.
func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// OpenMySQL connects to the price database and configures the pool.
func OpenMySQL(cfg MySQLConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	logrus.WithFields(logrus.Fields{
		"host":     cfg.Host,
		"database": cfg.Database,
	}).Info("Connected to MySQL price database")
	return db, nil
}

// priceRow is one icb_data record joined with its master tables.
type priceRow struct {
	ProductID         int64     `gorm:"column:product_id"`
	ProductName       string    `gorm:"column:product_name"`
	ProductClass      *string   `gorm:"column:product_class"`
	BrandID           *int64    `gorm:"column:brand_id"`
	BrandName         *string   `gorm:"column:brand_name"`
	EstablishmentID   int64     `gorm:"column:establishment_id"`
	EstablishmentName string    `gorm:"column:establishment_name"`
	Price             float64   `gorm:"column:price"`
	Quantity          *float64  `gorm:"column:quantity"`
	PricePerKg        *float64  `gorm:"column:price_per_kg"`
	CollectionDate    time.Time `gorm:"column:collection_date"`
	IsCarnesVermelhas bool      `gorm:"column:is_carnes_vermelhas"`
	IsGraosMassas     bool      `gorm:"column:is_graos_massas"`
	IsLaticinios      bool      `gorm:"column:is_laticinios"`
	IsPadariaCozinha  bool      `gorm:"column:is_padaria_cozinha"`
	IsVegetais        bool      `gorm:"column:is_vegetais"`
}

// MySQLOptions narrows what LoadMySQL reads.
type MySQLOptions struct {
	// ByID identifies products, establishments and brands by their surrogate
	// keys instead of their names.
	ByID  bool
	Since time.Time
	Until time.Time
}

// LoadMySQL reads the icb_data table and its products, brands and
// establishments master tables into a dataset.
func LoadMySQL(ctx context.Context, db *gorm.DB, opts MySQLOptions) (*Dataset, error) {
	q := db.WithContext(ctx).
		Table("icb_data AS d").
		Select(`d.product_id, p.name AS product_name, p.product_class,
			d.brand_id, b.name AS brand_name,
			d.establishment_id, e.name AS establishment_name,
			d.price, d.quantity, d.price_per_kg, d.collection_date,
			d.is_carnes_vermelhas, d.is_graos_massas, d.is_laticinios,
			d.is_padaria_cozinha, d.is_vegetais`).
		Joins("JOIN products p ON p.id = d.product_id").
		Joins("JOIN establishments e ON e.id = d.establishment_id").
		Joins("LEFT JOIN brands b ON b.id = d.brand_id")
	if !opts.Since.IsZero() {
		q = q.Where("d.collection_date >= ?", opts.Since)
	}
	if !opts.Until.IsZero() {
		q = q.Where("d.collection_date <= ?", opts.Until)
	}

	var rows []priceRow
	if err := q.Order("d.collection_date").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("dataset: querying icb_data: %w", err)
	}

	obs := make([]Observation, 0, len(rows))
	skipped := 0
	for _, r := range rows {
		o, ok := r.observation(opts.ByID)
		if !ok {
			skipped++
			continue
		}
		obs = append(obs, o)
	}

	logrus.WithFields(logrus.Fields{
		"rows":    len(rows),
		"skipped": skipped,
	}).Info("Loaded price observations from MySQL")

	if len(obs) == 0 {
		return nil, ErrNoRows
	}
	return New(obs), nil
}

func (r priceRow) observation(byID bool) (Observation, bool) {
	o := Observation{
		ProductID:       r.ProductName,
		EstablishmentID: r.EstablishmentName,
		CollectedAt:     r.CollectionDate,
		Price:           r.Price,
		Quantity:        r.Quantity,
	}
	if r.BrandName != nil {
		o.BrandID = *r.BrandName
	}
	if byID {
		o.ProductID = strconv.FormatInt(r.ProductID, 10)
		o.EstablishmentID = strconv.FormatInt(r.EstablishmentID, 10)
		o.BrandID = ""
		if r.BrandID != nil {
			o.BrandID = strconv.FormatInt(*r.BrandID, 10)
		}
	}
	if r.ProductClass != nil {
		o.ProductClass = *r.ProductClass
	}

	switch {
	case r.PricePerKg != nil:
		o.PPK = *r.PricePerKg
	default:
		ppk, ok := DerivePPK(r.Price, r.Quantity)
		if !ok {
			return o, false
		}
		o.PPK = ppk
	}

	flags := []struct {
		set  bool
		name string
	}{
		{r.IsCarnesVermelhas, CarnesVermelhas},
		{r.IsGraosMassas, GraosMassas},
		{r.IsLaticinios, Laticinios},
		{r.IsPadariaCozinha, PadariaCozinha},
		{r.IsVegetais, Vegetais},
	}
	var cats []string
	for _, f := range flags {
		if f.set {
			cats = append(cats, f.name)
		}
	}
	o.Categories = sortedCategories(cats)
	return o, true
}
