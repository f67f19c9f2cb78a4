package domain

// ProductDetail holds the technical data of a product: dimensions in cm,
// weight and load capacity in kg. A product has at most one.
type ProductDetail struct {
	ID                 uint     `json:"id" gorm:"primaryKey"`
	ProductID          uint     `json:"product_id" gorm:"not null;uniqueIndex"`
	Width              *float64 `json:"width" gorm:"type:numeric(10,2)"`
	Height             *float64 `json:"height" gorm:"type:numeric(10,2)"`
	Depth              *float64 `json:"depth" gorm:"type:numeric(10,2)"`
	Weight             *float64 `json:"weight" gorm:"type:numeric(10,2)"`
	ModelNumber        *string  `json:"model_number" gorm:"size:100"`
	Material           *string  `json:"material" gorm:"size:100"`
	Configuration      *string  `json:"configuration" gorm:"size:100"`
	UpholsteryMaterial *string  `json:"upholstery_material" gorm:"size:100"`
	FillingMaterial    *string  `json:"filling_material" gorm:"size:100"`
	MaxLoadCapacity    *int     `json:"max_load_capacity"`
	OriginCountry      *string  `json:"origin_country" gorm:"size:60"`
	WarrantySummary    string   `json:"warranty_summary" gorm:"type:text"`
	Product            *Product `json:"product,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (ProductDetail) TableName() string { return "product_details" }

type CreateProductDetailRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	ProductDetailFields
}

// ProductDetailFields are the editable attributes of a ProductDetail. Every
// field is optional on update.
type ProductDetailFields struct {
	Width              *float64 `json:"width" validate:"omitempty,gt=0"`
	Height             *float64 `json:"height" validate:"omitempty,gt=0"`
	Depth              *float64 `json:"depth" validate:"omitempty,gt=0"`
	Weight             *float64 `json:"weight" validate:"omitempty,gt=0"`
	ModelNumber        *string  `json:"model_number" validate:"omitempty,max=100"`
	Material           *string  `json:"material" validate:"omitempty,max=100"`
	Configuration      *string  `json:"configuration" validate:"omitempty,max=100"`
	UpholsteryMaterial *string  `json:"upholstery_material" validate:"omitempty,max=100"`
	FillingMaterial    *string  `json:"filling_material" validate:"omitempty,max=100"`
	MaxLoadCapacity    *int     `json:"max_load_capacity" validate:"omitempty,gte=0"`
	OriginCountry      *string  `json:"origin_country" validate:"omitempty,max=60"`
	WarrantySummary    *string  `json:"warranty_summary" validate:"omitempty,max=1000"`
}
