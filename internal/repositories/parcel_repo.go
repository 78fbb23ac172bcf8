package repositories

import (
	"context"
	"database/sql"

	intdb "transporte/internal/db"
	"transporte/internal/domain"
	"transporte/internal/domain/models"
)

type ParcelRepo struct {
	DB *sql.DB
}

const parcelColumns = `id, departure_id, sender_name, sender_phone, recipient_name, recipient_phone,
	description, weight_kg, price_cents, status, created_at, delivered_at`

func scanParcel(s rowScanner) (models.Parcel, error) {
	var (
		p         models.Parcel
		delivered sql.NullTime
	)
	err := s.Scan(&p.ID, &p.DepartureID, &p.Sender.Name, &p.Sender.Phone, &p.Recipient.Name, &p.Recipient.Phone,
		&p.Description, &p.WeightKg, &p.Price, &p.Status, &p.CreatedAt, &delivered)
	if delivered.Valid {
		t := delivered.Time
		p.DeliveredAt = &t
	}
	return p, err
}

func (r ParcelRepo) ListByDeparture(ctx context.Context, departureID domain.ID) ([]models.Parcel, error) {
	rows, err := pool(r.DB).QueryContext(ctx, `
		SELECT `+parcelColumns+`
		FROM parcels
		WHERE departure_id = ?
		ORDER BY created_at DESC, id DESC
	`, departureID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Parcel{}
	for rows.Next() {
		p, err := scanParcel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r ParcelRepo) GetByID(ctx context.Context, id domain.ID) (models.Parcel, error) {
	p, err := scanParcel(pool(r.DB).QueryRowContext(ctx, `SELECT `+parcelColumns+` FROM parcels WHERE id = ? LIMIT 1`, id))
	if err != nil {
		return models.Parcel{}, notFound(err, "parcel")
	}
	return p, nil
}

func (r ParcelRepo) Create(ctx context.Context, p models.Parcel) (models.Parcel, error) {
	res, err := pool(r.DB).ExecContext(ctx, `
		INSERT INTO parcels
			(departure_id, sender_name, sender_phone, recipient_name, recipient_phone, description, weight_kg, price_cents, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.DepartureID, p.Sender.Name, p.Sender.Phone, p.Recipient.Name, p.Recipient.Phone,
		p.Description, p.WeightKg, p.Price, p.Status)
	if err != nil {
		if intdb.IsForeignKeyViolation(err) {
			return p, domain.NotFoundError{Resource: "departure", Err: err}
		}
		return p, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return p, err
	}
	return r.GetByID(ctx, domain.ID(id))
}

func (r ParcelRepo) Update(ctx context.Context, p models.Parcel) error {
	var delivered any
	if p.DeliveredAt != nil {
		delivered = *p.DeliveredAt
	}
	res, err := pool(r.DB).ExecContext(ctx, `
		UPDATE parcels
		SET sender_name = ?, sender_phone = ?, recipient_name = ?, recipient_phone = ?,
		    description = ?, weight_kg = ?, price_cents = ?, status = ?, delivered_at = ?
		WHERE id = ?
	`, p.Sender.Name, p.Sender.Phone, p.Recipient.Name, p.Recipient.Phone,
		p.Description, p.WeightKg, p.Price, p.Status, delivered, p.ID)
	if err != nil {
		return err
	}
	if err := affected(res, "parcel"); err != nil {
		_, err = r.GetByID(ctx, p.ID)
		return err
	}
	return nil
}
