package colissimo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestEncodeFieldsScalars tests scalar leaf encoding
func TestEncodeFieldsScalars(t *testing.T) {
	fields := Fields{
		{Key: "contractNumber", Value: "123456"},
		{Key: "password", Value: "secret"},
	}

	assert.Equal(t, "<contractNumber>123456</contractNumber><password>secret</password>", EncodeFields(fields))
}

// TestEncodeFieldsOmitsEmptyValues tests that empty values never produce tags
func TestEncodeFieldsOmitsEmptyValues(t *testing.T) {
	fields := Fields{
		{Key: "first", Value: "kept"},
		{Key: "emptyString", Value: ""},
		{Key: "nilValue", Value: nil},
		{Key: "emptyMapping", Value: Fields{}},
		{Key: "emptySequence", Value: Sequence{}},
		{Key: "last", Value: "kept"},
	}

	assert.Equal(t, "<first>kept</first><last>kept</last>", EncodeFields(fields))
}

// TestEncodeFieldsPreservesOrder tests that sibling order follows the slice
func TestEncodeFieldsPreservesOrder(t *testing.T) {
	fields := Fields{
		{Key: "b", Value: "2"},
		{Key: "a", Value: "1"},
		{Key: "c", Value: "3"},
	}

	assert.Equal(t, "<b>2</b><a>1</a><c>3</c>", EncodeFields(fields))
}

// TestEncodeFieldsNestedMapping tests mapping values becoming child nodes
func TestEncodeFieldsNestedMapping(t *testing.T) {
	fields := Fields{
		{Key: "outputFormat", Value: Fields{
			{Key: "x", Value: "0"},
			{Key: "y", Value: "0"},
			{Key: "outputPrintingType", Value: "PDF_10x15_300dpi"},
		}},
	}

	expected := "<outputFormat><x>0</x><y>0</y><outputPrintingType>PDF_10x15_300dpi</outputPrintingType></outputFormat>"
	assert.Equal(t, expected, EncodeFields(fields))
}

// TestEncodeFieldsSequenceSiblings tests that a named sequence repeats its key
func TestEncodeFieldsSequenceSiblings(t *testing.T) {
	fields := Fields{
		{Key: "generateBordereauParcelNumberList", Value: Fields{
			{Key: "parcelsNumbers", Value: Sequence{"6C12345678901", "6C12345678902", "6C12345678901"}},
		}},
	}

	expected := "<generateBordereauParcelNumberList>" +
		"<parcelsNumbers>6C12345678901</parcelsNumbers>" +
		"<parcelsNumbers>6C12345678902</parcelsNumbers>" +
		"<parcelsNumbers>6C12345678901</parcelsNumbers>" +
		"</generateBordereauParcelNumberList>"
	assert.Equal(t, expected, EncodeFields(fields))
}

// TestEncodeFieldsSequenceSkipsEmptyElements tests empty element omission inside sequences
func TestEncodeFieldsSequenceSkipsEmptyElements(t *testing.T) {
	fields := Fields{
		{Key: "parcelsNumbers", Value: Sequence{"6C1", "", "6C2", nil}},
	}

	assert.Equal(t, "<parcelsNumbers>6C1</parcelsNumbers><parcelsNumbers>6C2</parcelsNumbers>", EncodeFields(fields))
}

// TestEncodeFieldsNestedSequenceItemNaming tests the itemN naming of sequence-in-sequence
func TestEncodeFieldsNestedSequenceItemNaming(t *testing.T) {
	fields := Fields{
		{Key: "rows", Value: Sequence{
			Sequence{"a", "b"},
			Sequence{"c"},
		}},
	}

	assert.Equal(t, "<item0>a</item0><item0>b</item0><item1>c</item1>", EncodeFields(fields))
}

// TestEncodeFieldsEscapesEntities tests entity escaping of scalar content
func TestEncodeFieldsEscapesEntities(t *testing.T) {
	fields := Fields{
		{Key: "companyName", Value: `Dupont & Fils <SARL> "Les Halles"`},
	}

	assert.Equal(t, "<companyName>Dupont &amp; Fils &lt;SARL&gt; &#34;Les Halles&#34;</companyName>", EncodeFields(fields))
}

// TestEncodeFieldsNoTrimming tests that surrounding whitespace survives
func TestEncodeFieldsNoTrimming(t *testing.T) {
	fields := Fields{
		{Key: "line2", Value: "  12 rue de la Paix "},
	}

	assert.Equal(t, "<line2>  12 rue de la Paix </line2>", EncodeFields(fields))
}
