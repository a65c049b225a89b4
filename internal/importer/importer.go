package importer

import (
	"io"

	"github.com/MrJamesThe3rd/tilly/internal/catalog"
)

type Supplier string

const (
	SupplierVelox Supplier = "velox"
)

type Importer interface {
	Parse(r io.Reader) ([]catalog.CreateParams, error)
}
