package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"baias/internal/catalog/models"
	dErrors "baias/pkg/domain-errors"
	"baias/pkg/platform/sentinel"
)

const scenarioDoc = `{"A": {"M1": {"C1": {"types": {"T1": {"baias": {"B1": ["PN-100"]}}}}}}}`

var (
	pathB1 = models.Path{Sector: "A", Model: "M1", TypeCode: "C1", Type: "T1", Bay: "B1"}
	pathB2 = pathB1.With(models.LevelBay, "B2")
)

type CatalogSuite struct {
	suite.Suite
	doc *models.Catalog
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogSuite))
}

func (s *CatalogSuite) SetupTest() {
	s.doc = models.NewCatalog()
	s.Require().NoError(json.Unmarshal([]byte(scenarioDoc), s.doc))
}

func (s *CatalogSuite) encoded() string {
	b, err := json.Marshal(s.doc)
	s.Require().NoError(err)
	return string(b)
}

// TestScenario walks the add / duplicate / rename / delete sequence end to end.
func (s *CatalogSuite) TestScenario() {
	s.Require().NoError(AddItem(s.doc, pathB1, "PN-200"))
	items, err := Bay(s.doc, pathB1)
	s.Require().NoError(err)
	s.Equal(models.Items{"PN-100", "PN-200"}, items)

	err = AddItem(s.doc, pathB1, "PN-100")
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.ErrorIs(err, sentinel.ErrConflict)
	items, _ = Bay(s.doc, pathB1)
	s.Equal(models.Items{"PN-100", "PN-200"}, items)

	s.Require().NoError(RenameNode(s.doc, models.LevelBay, pathB1, "B1", "B2"))
	items, err = Bay(s.doc, pathB2)
	s.Require().NoError(err)
	s.Equal(models.Items{"PN-100", "PN-200"}, items)
	_, err = Bay(s.doc, pathB1)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.Require().NoError(DeleteNode(s.doc, models.LevelType, pathB1, "T1"))
	types, err := ListChildren(s.doc, models.LevelType, pathB1)
	s.Require().NoError(err)
	s.Empty(types)
}

func (s *CatalogSuite) TestListChildren() {
	s.Run("returns keys at every level", func() {
		for lvl, want := range map[models.Level][]string{
			models.LevelSector:   {"A"},
			models.LevelModel:    {"M1"},
			models.LevelTypeCode: {"C1"},
			models.LevelType:     {"T1"},
			models.LevelBay:      {"B1"},
		} {
			got, err := ListChildren(s.doc, lvl, pathB1)
			s.Require().NoError(err, lvl.String())
			s.Equal(want, got, lvl.String())
		}
	})

	s.Run("missing segment is NotFound", func() {
		_, err := ListChildren(s.doc, models.LevelBay, pathB1.With(models.LevelTypeCode, "nope"))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("empty prefix segment is NotFound", func() {
		_, err := ListChildren(s.doc, models.LevelModel, models.Path{})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("invalid level is BadRequest", func() {
		_, err := ListChildren(s.doc, models.Level(7), pathB1)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *CatalogSuite) TestAddNodeRejectsExistingKeyAtEveryLevel() {
	existing := map[models.Level]string{
		models.LevelSector:   "A",
		models.LevelModel:    "M1",
		models.LevelTypeCode: "C1",
		models.LevelType:     "T1",
		models.LevelBay:      "B1",
	}
	before := s.encoded()
	for lvl, key := range existing {
		err := AddNode(s.doc, lvl, pathB1, key)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict), lvl.String())
		s.Equal(before, s.encoded(), "tree changed after rejected add at %s", lvl)
	}
}

func (s *CatalogSuite) TestAddNodeCreatesEmptyChildren() {
	s.Require().NoError(AddNode(s.doc, models.LevelSector, models.Path{}, "B"))
	s.Require().NoError(AddNode(s.doc, models.LevelModel, models.Path{Sector: "B"}, "M"))
	s.Require().NoError(AddNode(s.doc, models.LevelTypeCode, models.Path{Sector: "B", Model: "M"}, "C"))
	s.Require().NoError(AddNode(s.doc, models.LevelType, models.Path{Sector: "B", Model: "M", TypeCode: "C"}, " T "))
	s.Require().NoError(AddNode(s.doc, models.LevelBay, models.Path{Sector: "B", Model: "M", TypeCode: "C", Type: "T"}, "Bay 01"))

	s.JSONEq(`{
		"A": {"M1": {"C1": {"types": {"T1": {"baias": {"B1": ["PN-100"]}}}}}},
		"B": {"M": {"C": {"types": {"T": {"baias": {"Bay 01": []}}}}}}
	}`, s.encoded())
}

func (s *CatalogSuite) TestAddNodeValidation() {
	before := s.encoded()

	err := AddNode(s.doc, models.LevelBay, pathB1, "   ")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	err = AddNode(s.doc, models.LevelBay, pathB1.With(models.LevelType, "missing"), "B9")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.Equal(before, s.encoded())
}

func (s *CatalogSuite) TestRenameNode() {
	s.Run("moves renamed key after its siblings", func() {
		s.Require().NoError(AddNode(s.doc, models.LevelBay, pathB1, "B3"))
		s.Require().NoError(RenameNode(s.doc, models.LevelBay, pathB1, "B1", "B2"))
		bays, err := ListChildren(s.doc, models.LevelBay, pathB1)
		s.Require().NoError(err)
		s.Equal([]string{"B3", "B2"}, bays)
	})

	s.Run("conflict when target exists leaves both", func() {
		before := s.encoded()
		err := RenameNode(s.doc, models.LevelBay, pathB1, "B3", "B2")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal(before, s.encoded())
	})

	s.Run("missing source is NotFound", func() {
		err := RenameNode(s.doc, models.LevelBay, pathB1, "B1", "B7")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("same name is a no-op", func() {
		before := s.encoded()
		s.NoError(RenameNode(s.doc, models.LevelBay, pathB1, "B3", "B3"))
		s.Equal(before, s.encoded())
	})

	s.Run("renaming a sector carries its subtree", func() {
		s.Require().NoError(RenameNode(s.doc, models.LevelSector, models.Path{}, "A", "Região E"))
		items, err := Bay(s.doc, pathB2.With(models.LevelSector, "Região E"))
		s.Require().NoError(err)
		s.Equal(models.Items{"PN-100"}, items)
	})
}

func (s *CatalogSuite) TestDeleteNode() {
	s.Run("missing key is not an error", func() {
		before := s.encoded()
		s.NoError(DeleteNode(s.doc, models.LevelBay, pathB1, "nope"))
		s.Equal(before, s.encoded())
	})

	s.Run("missing prefix is NotFound", func() {
		err := DeleteNode(s.doc, models.LevelBay, pathB1.With(models.LevelModel, "nope"), "B1")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("deleting a type drops its bays and items", func() {
		s.Require().NoError(AddNode(s.doc, models.LevelBay, pathB1, "B5"))
		s.Require().NoError(DeleteNode(s.doc, models.LevelType, pathB1, "T1"))
		_, err := Bay(s.doc, pathB1)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		_, err = ListChildren(s.doc, models.LevelBay, pathB1)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("deleting a sector drops everything beneath", func() {
		s.Require().NoError(DeleteNode(s.doc, models.LevelSector, models.Path{}, "A"))
		s.Equal("{}", s.encoded())
	})
}

func (s *CatalogSuite) TestItems() {
	s.Run("add trims and rejects blanks", func() {
		s.NoError(AddItem(s.doc, pathB1, "  PN-300 "))
		err := AddItem(s.doc, pathB1, " ")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		items, _ := Bay(s.doc, pathB1)
		s.Equal(models.Items{"PN-100", "PN-300"}, items)
	})

	s.Run("duplicate check is case sensitive", func() {
		s.NoError(AddItem(s.doc, pathB1, "pn-100"))
	})

	s.Run("remove drops first exact match only", func() {
		s.NoError(RemoveItem(s.doc, pathB1, "PN-300"))
		s.NoError(RemoveItem(s.doc, pathB1, "PN-999"))
		items, _ := Bay(s.doc, pathB1)
		s.Equal(models.Items{"PN-100", "pn-100"}, items)
	})

	s.Run("remove by index ignores out of range", func() {
		s.NoError(RemoveItemAt(s.doc, pathB1, 5))
		s.NoError(RemoveItemAt(s.doc, pathB1, -1))
		s.NoError(RemoveItemAt(s.doc, pathB1, 0))
		items, _ := Bay(s.doc, pathB1)
		s.Equal(models.Items{"pn-100"}, items)
	})

	s.Run("missing bay is NotFound", func() {
		s.True(dErrors.HasCode(AddItem(s.doc, pathB2, "x"), dErrors.CodeNotFound))
		s.True(dErrors.HasCode(RemoveItem(s.doc, pathB2, "x"), dErrors.CodeNotFound))
	})

	s.Run("Bay returns a copy", func() {
		items, _ := Bay(s.doc, pathB1)
		items[0] = "mutated"
		again, _ := Bay(s.doc, pathB1)
		s.Equal(models.Items{"pn-100"}, again)
	})
}
