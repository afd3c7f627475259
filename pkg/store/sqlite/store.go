package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nutri-tools/nutri/pkg/models/domain"
)

// Store persists the engine state snapshot: history records with their items,
// and the profile. Shapes match the domain model exactly; there is no
// external identifier scheme beyond the record id.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

// NewWithDB wraps an existing connection without touching the schema.
func NewWithDB(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS records (
        seq INTEGER PRIMARY KEY AUTOINCREMENT,
        id TEXT NOT NULL UNIQUE,
        title TEXT NOT NULL,
        summary TEXT NOT NULL,
        calories REAL NOT NULL,
        protein REAL NOT NULL,
        carbs REAL NOT NULL,
        fat REAL NOT NULL,
        fiber REAL NOT NULL,
        sugar REAL NOT NULL,
        health_score INTEGER NOT NULL,
        advice TEXT NOT NULL,
        timestamp TEXT NOT NULL,
        image_mime TEXT NOT NULL DEFAULT '',
        image BLOB
    );

    CREATE TABLE IF NOT EXISTS record_items (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        record_id TEXT NOT NULL,
        name TEXT NOT NULL,
        weight_g REAL NOT NULL,
        calories REAL NOT NULL,
        protein REAL NOT NULL,
        carbs REAL NOT NULL,
        fat REAL NOT NULL,
        FOREIGN KEY (record_id) REFERENCES records(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS profile (
        id INTEGER PRIMARY KEY CHECK (id = 1),
        daily_calorie_goal REAL NOT NULL,
        dietary_preference TEXT NOT NULL,
        height_cm REAL NOT NULL,
        weight_kg REAL NOT NULL,
        water_glasses INTEGER NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_records_timestamp ON records(timestamp);
    CREATE INDEX IF NOT EXISTS idx_record_items_record_id ON record_items(record_id);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *Store) SaveRecord(ctx context.Context, rec domain.AnalysisRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer tx.Rollback()

	var imageMIME string
	var imageData []byte
	if rec.Image != nil {
		imageMIME = rec.Image.MIME
		imageData = rec.Image.Data
	}

	recordQuery := `
        INSERT INTO records (id, title, summary, calories, protein, carbs, fat, fiber, sugar,
            health_score, advice, timestamp, image_mime, image)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err = tx.ExecContext(ctx, recordQuery,
		rec.ID, rec.Title, rec.Summary,
		rec.Total.Calories, rec.Total.Protein, rec.Total.Carbs,
		rec.Total.Fat, rec.Total.Fiber, rec.Total.Sugar,
		rec.HealthScore, rec.Advice, rec.Timestamp.Format(time.RFC3339Nano),
		imageMIME, imageData)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}

	itemQuery := `
        INSERT INTO record_items (record_id, name, weight_g, calories, protein, carbs, fat)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `
	for _, item := range rec.Items {
		_, err = tx.ExecContext(ctx, itemQuery,
			rec.ID, item.Name, item.WeightG, item.Calories, item.Protein, item.Carbs, item.Fat)
		if err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
	}

	return tx.Commit()
}

func (s *Store) DeleteRecord(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM record_items WHERE record_id = ?`, id); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return tx.Commit()
}

func (s *Store) DeleteAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM record_items`); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	return tx.Commit()
}

// LoadRecords returns all records in append order.
func (s *Store) LoadRecords(ctx context.Context) ([]domain.AnalysisRecord, error) {
	query := `
        SELECT id, title, summary, calories, protein, carbs, fat, fiber, sugar,
            health_score, advice, timestamp, image_mime, image
        FROM records
        ORDER BY seq
    `
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.AnalysisRecord, 0)
	for rows.Next() {
		var rec domain.AnalysisRecord
		var timestampStr, imageMIME string
		var imageData []byte

		err := rows.Scan(
			&rec.ID, &rec.Title, &rec.Summary,
			&rec.Total.Calories, &rec.Total.Protein, &rec.Total.Carbs,
			&rec.Total.Fat, &rec.Total.Fiber, &rec.Total.Sugar,
			&rec.HealthScore, &rec.Advice, &timestampStr, &imageMIME, &imageData)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}

		if rec.Timestamp, err = time.Parse(time.RFC3339Nano, timestampStr); err != nil {
			return nil, fmt.Errorf("parse timestamp: %w", err)
		}
		if len(imageData) > 0 {
			rec.Image = &domain.ImageRef{MIME: imageMIME, Data: imageData}
		}

		if err := s.loadItems(ctx, &rec); err != nil {
			return nil, fmt.Errorf("load items for record %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) loadItems(ctx context.Context, rec *domain.AnalysisRecord) error {
	query := `
        SELECT name, weight_g, calories, protein, carbs, fat
        FROM record_items
        WHERE record_id = ?
        ORDER BY id
    `
	rows, err := s.db.QueryContext(ctx, query, rec.ID)
	if err != nil {
		return fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.NutritionItem, 0)
	for rows.Next() {
		var item domain.NutritionItem
		if err := rows.Scan(&item.Name, &item.WeightG, &item.Calories, &item.Protein, &item.Carbs, &item.Fat); err != nil {
			return fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	rec.Items = items
	return rows.Err()
}

func (s *Store) SaveProfile(ctx context.Context, p domain.Profile) error {
	query := `
        INSERT INTO profile (id, daily_calorie_goal, dietary_preference, height_cm, weight_kg, water_glasses)
        VALUES (1, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            daily_calorie_goal = excluded.daily_calorie_goal,
            dietary_preference = excluded.dietary_preference,
            height_cm = excluded.height_cm,
            weight_kg = excluded.weight_kg,
            water_glasses = excluded.water_glasses
    `
	_, err := s.db.ExecContext(ctx, query,
		p.DailyCalorieGoal, p.DietaryPreference, p.HeightCm, p.WeightKg, p.WaterGlasses)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *Store) LoadProfile(ctx context.Context) (domain.Profile, bool, error) {
	query := `
        SELECT daily_calorie_goal, dietary_preference, height_cm, weight_kg, water_glasses
        FROM profile WHERE id = 1
    `
	var p domain.Profile
	err := s.db.QueryRowContext(ctx, query).
		Scan(&p.DailyCalorieGoal, &p.DietaryPreference, &p.HeightCm, &p.WeightKg, &p.WaterGlasses)
	if err == sql.ErrNoRows {
		return domain.Profile{}, false, nil
	}
	if err != nil {
		return domain.Profile{}, false, fmt.Errorf("load profile: %w", err)
	}
	return p, true, nil
}
