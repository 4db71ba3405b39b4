package bays

// InventoryConfig is the root structure of the bay inventory file
type InventoryConfig struct {
	Bays []BayProps `yaml:"bays"`
}

// BayProps describes one bay
type BayProps struct {
	UUID       string `yaml:"uuid"`
	Name       string `yaml:"name"`
	APIAddress string `yaml:"api_address,omitempty"`
}
