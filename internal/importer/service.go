package importer

import (
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/tilly/internal/catalog"
	"github.com/MrJamesThe3rd/tilly/internal/importer/velox"
)

type Service struct {
	veloxImporter Importer
}

func NewService() *Service {
	return &Service{
		veloxImporter: velox.NewParser(),
	}
}

func (s *Service) Import(supplier Supplier, r io.Reader) ([]catalog.CreateParams, error) {
	var importer Importer

	switch supplier {
	case SupplierVelox:
		importer = s.veloxImporter
	default:
		return nil, fmt.Errorf("unknown supplier: %s", supplier)
	}

	return importer.Parse(r)
}
