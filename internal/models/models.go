package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusShipped   = "shipped"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"not null"                 json:"username"`
	Email        string `gorm:"unique;not null"          json:"email"`
	Phone        string `json:"phone"`
	Location     string `json:"location"`
	PasswordHash string `gorm:"not null"                 json:"-"`
}

type Order struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID      string `gorm:"unique;not null"          json:"order_id"`
	UserID       uint   `gorm:"index;not null"           json:"user_id"`
	Status       string `gorm:"not null"                 json:"status"`
	OrderDate    string `gorm:"not null"                 json:"order_date"`
	DeliveryDate string `gorm:"not null"                 json:"delivery_date"`
	ProductType  string `gorm:"not null"                 json:"product_type"`
}
