package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// StatusWon is the opportunity status counted in a client brief.
const StatusWon = "Won"

// CatalogSource names the product catalog in ProductInfo.Sources.
const CatalogSource = "Internal Product Catalog"

var (
	ErrCRMNotFound           = errors.New("CRM data file not found")
	ErrClientNotFound        = errors.New("client not found in CRM")
	ErrOpportunitiesNotFound = errors.New("opportunities data file not found")
)

// Client is one CRM record.
type Client struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Industry       string    `json:"industry,omitempty"`
	Size           string    `json:"size,omitempty"`
	ComplianceTier string    `json:"compliance_tier,omitempty"`
	Contacts       []Contact `json:"contacts,omitempty"`
	Notes          string    `json:"notes,omitempty"`
}

// Contact is a CRM contact. The CRM file may list contacts as bare names
// or as objects.
type Contact struct {
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

func (c *Contact) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*c = Contact{Name: name}
		return nil
	}

	type plain Contact
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Contact(p)
	return nil
}

func (c Contact) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	if c.Role != "" {
		fmt.Fprintf(&b, " (%s)", c.Role)
	}
	if c.Email != "" {
		fmt.Fprintf(&b, " <%s>", c.Email)
	}
	return b.String()
}

// Opportunity is a past or open deal with a client.
type Opportunity struct {
	ID       string   `json:"id,omitempty"`
	ClientID string   `json:"client_id"`
	Name     string   `json:"opportunity_name,omitempty"`
	Status   string   `json:"status,omitempty"`
	Value    float64  `json:"value,omitempty"`
	Amount   float64  `json:"amount,omitempty"`
	Products []string `json:"products,omitempty"`
}

// ContractValue is the value field, or amount when value is absent.
func (o Opportunity) ContractValue() float64 {
	if o.Value != 0 {
		return o.Value
	}
	return o.Amount
}

// BriefStats summarises a client's opportunities.
type BriefStats struct {
	TotalOpportunities int     `json:"total_opportunities"`
	WonOpportunities   int     `json:"won_opportunities"`
	TotalContractValue float64 `json:"total_contract_value"`
}

// ClientBrief is the account summary handed to sales and delivery.
type ClientBrief struct {
	Client            Client        `json:"client"`
	Opportunities     []Opportunity `json:"opportunities"`
	SummaryStats      BriefStats    `json:"summary_stats"`
	KeyContacts       []Contact     `json:"key_contacts"`
	RelationshipNotes string        `json:"relationship_notes"`
	ComplianceTier    string        `json:"compliance_tier"`
}

// CatalogProduct is an entry of the product catalog.
type CatalogProduct struct {
	Name                  string   `json:"name"`
	Aliases               []string `json:"aliases,omitempty"`
	Category              string   `json:"category,omitempty"`
	PricingModel          string   `json:"pricing_model,omitempty"`
	Description           string   `json:"description,omitempty"`
	Features              []string `json:"features,omitempty"`
	TechnicalRequirements []string `json:"technical_requirements,omitempty"`
	SLATier               string   `json:"sla_tier,omitempty"`
}

// matches is true when product is part of the name or equals an alias,
// ignoring case.
func (p CatalogProduct) matches(product string) bool {
	if strings.Contains(strings.ToLower(p.Name), strings.ToLower(product)) {
		return true
	}
	for _, alias := range p.Aliases {
		if strings.EqualFold(alias, product) {
			return true
		}
	}
	return false
}

func (p CatalogProduct) render() string {
	var b strings.Builder
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n", p.Description)
	}
	if p.Category != "" {
		fmt.Fprintf(&b, "\nCategory: %s\n", p.Category)
	}
	if p.PricingModel != "" {
		fmt.Fprintf(&b, "Pricing model: %s\n", p.PricingModel)
	}
	fmt.Fprintf(&b, "SLA tier: %s\n", p.SLATier)
	writeList(&b, "Features", p.Features)
	writeList(&b, "Technical requirements", p.TechnicalRequirements)
	return strings.TrimSpace(b.String())
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}

// SearchCRM returns the first client whose name contains name, or whose ID
// equals it, ignoring case.
func (a *App) SearchCRM(name string) (Client, error) {
	var data struct {
		Clients []Client `json:"clients"`
	}
	if err := readJSON(a.cfg.CRMFile(), &data); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Client{}, ErrCRMNotFound
		}
		return Client{}, fmt.Errorf("failed to read CRM data: %w", err)
	}

	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return Client{}, fmt.Errorf("%w: empty client name", ErrClientNotFound)
	}
	for _, c := range data.Clients {
		if strings.Contains(strings.ToLower(c.Name), needle) || needle == strings.ToLower(c.ID) {
			return c, nil
		}
	}
	return Client{}, fmt.Errorf("%w: '%s'", ErrClientNotFound, name)
}

// SearchOpportunities lists the opportunities recorded for a client ID. A
// client without opportunities yields an empty list.
func (a *App) SearchOpportunities(clientID string) ([]Opportunity, error) {
	var data struct {
		Opportunities []Opportunity `json:"opportunities"`
	}
	if err := readJSON(a.cfg.OpportunitiesFile(), &data); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrOpportunitiesNotFound
		}
		return nil, fmt.Errorf("failed to read opportunities data: %w", err)
	}

	opps := []Opportunity{}
	for _, o := range data.Opportunities {
		if o.ClientID == clientID {
			opps = append(opps, o)
		}
	}
	return opps, nil
}

// ClientBrief looks the client up in the CRM and summarises its
// opportunities. A missing opportunities file leaves the brief without
// deals.
func (a *App) ClientBrief(name string) (ClientBrief, error) {
	client, err := a.SearchCRM(name)
	if err != nil {
		return ClientBrief{}, err
	}

	opps, err := a.SearchOpportunities(client.ID)
	switch {
	case errors.Is(err, ErrOpportunitiesNotFound):
		a.log.Warn("opportunities data file not found", "file", a.cfg.OpportunitiesFile())
		opps = []Opportunity{}
	case err != nil:
		return ClientBrief{}, err
	}

	return assembleBrief(client, opps), nil
}

// ClientTier resolves a client's compliance tier from the CRM. A record
// without a tier yields "".
func (a *App) ClientTier(name string) (string, error) {
	client, err := a.SearchCRM(name)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(client.ComplianceTier), nil
}

func assembleBrief(client Client, opps []Opportunity) ClientBrief {
	brief := ClientBrief{
		Client:            client,
		Opportunities:     opps,
		KeyContacts:       client.Contacts,
		RelationshipNotes: client.Notes,
		ComplianceTier:    client.ComplianceTier,
	}
	if brief.KeyContacts == nil {
		brief.KeyContacts = []Contact{}
	}
	if brief.ComplianceTier == "" {
		brief.ComplianceTier = "UNKNOWN"
	}

	brief.SummaryStats.TotalOpportunities = len(opps)
	for _, o := range opps {
		if o.Status == StatusWon {
			brief.SummaryStats.WonOpportunities++
			brief.SummaryStats.TotalContractValue += o.ContractValue()
		}
	}
	return brief
}

// lookupCatalog finds product in the catalog file. A missing file is not an
// error.
func (a *App) lookupCatalog(product string) (CatalogProduct, bool, error) {
	var data struct {
		Products []CatalogProduct `json:"products"`
	}
	if err := readJSON(a.cfg.ProductCatalogFile(), &data); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return CatalogProduct{}, false, nil
		}
		return CatalogProduct{}, false, err
	}

	for _, p := range data.Products {
		if p.matches(product) {
			if p.SLATier == "" {
				p.SLATier = "Standard"
			}
			return p, true, nil
		}
	}
	return CatalogProduct{}, false, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// RenderBrief formats a client brief as markdown.
func RenderBrief(b ClientBrief) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "# %s (%s)\n\n", b.Client.Name, b.Client.ID)
	if b.Client.Industry != "" {
		fmt.Fprintf(&buf, "- **Industry:** %s\n", b.Client.Industry)
	}
	if b.Client.Size != "" {
		fmt.Fprintf(&buf, "- **Size:** %s\n", b.Client.Size)
	}
	fmt.Fprintf(&buf, "- **Compliance tier:** %s\n", b.ComplianceTier)
	fmt.Fprintf(&buf, "- **Opportunities:** %d (%d won, total value %.2f)\n",
		b.SummaryStats.TotalOpportunities, b.SummaryStats.WonOpportunities, b.SummaryStats.TotalContractValue)

	if len(b.KeyContacts) > 0 {
		buf.WriteString("\n## Key Contacts\n\n")
		for _, c := range b.KeyContacts {
			fmt.Fprintf(&buf, "- %s\n", c)
		}
	}
	if len(b.Opportunities) > 0 {
		buf.WriteString("\n## Opportunities\n\n")
		for _, o := range b.Opportunities {
			fmt.Fprintf(&buf, "- %s: %s (%.2f)\n", o.Name, o.Status, o.ContractValue())
		}
	}
	if b.RelationshipNotes != "" {
		fmt.Fprintf(&buf, "\n## Notes\n\n%s\n", b.RelationshipNotes)
	}
	return buf.String()
}
