package queue

const (
	TypeTenantProvision = "tenant:provision"
)

type TenantProvisionPayload struct {
	TenantID string `json:"tenant_id"`
}
