package models

// ServiceOffering links a company to a service it sells. CompanyName and
// ServiceName are denormalized onto the offering so batch queries do not
// join the company collection per result.
type ServiceOffering struct {
	ID          string `bson:"id" json:"id"`
	CompanyID   string `bson:"company_id" json:"companyId"`
	ServiceID   string `bson:"service_id" json:"serviceId"`
	CompanyName string `bson:"company_name" json:"companyName"`
	ServiceName string `bson:"service_name" json:"serviceName"`
	Active      bool   `bson:"active" json:"active"`
}
