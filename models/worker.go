package models

// Worker represents a company technician. A worker is eligible for a
// service request when active and assigned to the requested service.
type Worker struct {
	ID         string   `bson:"id" json:"id"`
	CompanyID  string   `bson:"company_id" json:"companyId"`
	Name       string   `bson:"name" json:"name"`
	IsActive   bool     `bson:"is_active" json:"isActive"`
	ServiceIDs []string `bson:"service_ids" json:"serviceIds"`
}
