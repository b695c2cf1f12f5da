package models

import "time"

type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsCompany    bool      `db:"is_company" json:"is_company"`
	CompanyName  *string   `db:"company_name" json:"company_name,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Profile struct {
	UserID      string    `db:"user_id" json:"user_id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	AvatarURL   *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type BusinessProfile struct {
	UserID      string    `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Website     *string   `db:"website" json:"website,omitempty"`
	ImagePath   *string   `db:"image_path" json:"-"`
	ImageURL    string    `db:"-" json:"image_url,omitempty"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type Location struct {
	UserID    string    `db:"user_id" json:"user_id"`
	Latitude  float64   `db:"latitude" json:"latitude"`
	Longitude float64   `db:"longitude" json:"longitude"`
	IsCompany bool      `db:"is_company" json:"is_company"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

const (
	FeedbackInterested    = "interested"
	FeedbackNotInterested = "not_interested"
)

type Message struct {
	ID               string    `db:"id" json:"id"`
	SenderID         string    `db:"sender_id" json:"sender_id"`
	ReceiverID       string    `db:"receiver_id" json:"receiver_id"`
	FilePath         string    `db:"file_path" json:"file_path"`
	FileType         string    `db:"file_type" json:"file_type"`
	Read             bool      `db:"read" json:"read"`
	Feedback         *string   `db:"feedback" json:"feedback"`
	PaymentRequestID string    `db:"payment_request_id" json:"-"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

type Wallet struct {
	UserID    string    `db:"user_id" json:"user_id"`
	Balance   int64     `db:"balance" json:"balance"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction amounts are signed minor units: negative debits, positive credits.
type Transaction struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Amount      int64     `db:"amount" json:"amount"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type PaymentRequest struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	TransactionID string    `db:"transaction_id" json:"transaction_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type HotDeal struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	Title         string    `db:"title" json:"title"`
	Description   string    `db:"description" json:"description"`
	StartTime     time.Time `db:"start_time" json:"start_time"`
	DurationHours int       `db:"duration_hours" json:"duration_hours"`
	ImagePath     *string   `db:"image_path" json:"-"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type Treasure struct {
	ID           string    `db:"id" json:"id"`
	CreatedBy    string    `db:"created_by" json:"created_by"`
	Latitude     float64   `db:"latitude" json:"latitude"`
	Longitude    float64   `db:"longitude" json:"longitude"`
	RewardAmount int64     `db:"reward_amount" json:"reward_amount"`
	Hint         string    `db:"hint" json:"hint"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type TreasureFound struct {
	TreasureID string    `db:"treasure_id" json:"treasure_id"`
	UserID     string    `db:"user_id" json:"user_id"`
	FoundAt    time.Time `db:"found_at" json:"found_at"`
}
