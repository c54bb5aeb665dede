// Package xhb decodes HomeBank .xhb database files into typed records.
//
// An .xhb file is a flat XML document: a <homebank> root wrapping empty
// elements (<cur>, <account>, <pay>, <cat>, <ope>, ...) whose data all
// lives in attributes. Decoding is a single streaming pass; unknown
// elements and attributes are skipped so newer HomeBank versions still
// decode.
package xhb

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	errNotHomeBank = errors.New("root element is not <homebank>")
	errMissingAttr = errors.New("missing required attribute")
)

// DecodeError describes a structural problem in an .xhb file. It carries
// the element and attribute being decoded so the failure can be reported
// with its record context.
type DecodeError struct {
	Element string
	Attr    string
	Value   string
	Err     error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Element == "":
		return fmt.Sprintf("decoding xhb: %v", e.Err)
	case e.Attr == "":
		return fmt.Sprintf("decoding xhb: element <%s>: %v", e.Element, e.Err)
	default:
		return fmt.Sprintf("decoding xhb: element <%s> attribute %q=%q: %v", e.Element, e.Attr, e.Value, e.Err)
	}
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ParseFile reads and decodes an .xhb file. The file is fully consumed and
// closed before ParseFile returns.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	defer f.Close()

	return ParseReader(f)
}

// ParseReader decodes an .xhb document from r.
func ParseReader(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	doc := &Document{}
	seenRoot := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DecodeError{Err: err}
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if !seenRoot {
			if start.Name.Local != "homebank" {
				return nil, &DecodeError{Element: start.Name.Local, Err: errNotHomeBank}
			}
			seenRoot = true
			for _, a := range start.Attr {
				if a.Name.Local == "v" {
					doc.Version = a.Value
				}
			}
			continue
		}

		switch start.Name.Local {
		case "properties":
			props, err := parseProperties(start.Attr)
			if err != nil {
				return nil, err
			}
			doc.Properties = props
		case "cur":
			rec, err := parseCurrency(start.Attr)
			if err != nil {
				return nil, err
			}
			doc.Currencies = append(doc.Currencies, rec)
		case "grp":
			rec, err := parseGroup(start.Attr)
			if err != nil {
				return nil, err
			}
			doc.Groups = append(doc.Groups, rec)
		case "account":
			rec, err := parseAccount(start.Attr)
			if err != nil {
				return nil, err
			}
			doc.Accounts = append(doc.Accounts, rec)
		case "pay":
			rec, err := parsePayee(start.Attr)
			if err != nil {
				return nil, err
			}
			doc.Payees = append(doc.Payees, rec)
		case "cat":
			rec, err := parseCategory(start.Attr)
			if err != nil {
				return nil, err
			}
			doc.Categories = append(doc.Categories, rec)
		case "ope":
			rec, err := parseTransaction(start.Attr)
			if err != nil {
				return nil, err
			}
			doc.Transactions = append(doc.Transactions, rec)
		default:
			// Unknown record kinds (fav, tag, ...) are skipped so newer
			// schema versions still decode.
		}
	}

	if !seenRoot {
		return nil, &DecodeError{Err: errNotHomeBank}
	}
	return doc, nil
}

func parseProperties(attrs []xml.Attr) (Properties, error) {
	var p Properties
	for _, a := range attrs {
		switch a.Name.Local {
		case "title":
			p.Title = a.Value
		case "curr":
			v, err := parseInt("properties", a)
			if err != nil {
				return Properties{}, err
			}
			p.Currency = v
		}
	}
	return p, nil
}

func parseCurrency(attrs []xml.Attr) (CurrencyRecord, error) {
	rec := CurrencyRecord{Frac: 2}
	haveKey := false
	for _, a := range attrs {
		switch a.Name.Local {
		case "key":
			v, err := parseInt("cur", a)
			if err != nil {
				return CurrencyRecord{}, err
			}
			rec.Key = v
			haveKey = true
		case "name":
			rec.Name = a.Value
		case "iso":
			rec.ISO = a.Value
		case "symb":
			rec.Symbol = a.Value
		case "frac":
			v, err := parseInt("cur", a)
			if err != nil {
				return CurrencyRecord{}, err
			}
			rec.Frac = v
		}
	}
	if !haveKey {
		return CurrencyRecord{}, &DecodeError{Element: "cur", Attr: "key", Err: errMissingAttr}
	}
	return rec, nil
}

func parseGroup(attrs []xml.Attr) (GroupRecord, error) {
	var rec GroupRecord
	haveKey := false
	for _, a := range attrs {
		switch a.Name.Local {
		case "key":
			v, err := parseInt("grp", a)
			if err != nil {
				return GroupRecord{}, err
			}
			rec.Key = v
			haveKey = true
		case "name":
			rec.Name = a.Value
		}
	}
	if !haveKey {
		return GroupRecord{}, &DecodeError{Element: "grp", Attr: "key", Err: errMissingAttr}
	}
	return rec, nil
}

func parseAccount(attrs []xml.Attr) (AccountRecord, error) {
	var rec AccountRecord
	haveKey := false
	for _, a := range attrs {
		switch a.Name.Local {
		case "key":
			v, err := parseInt("account", a)
			if err != nil {
				return AccountRecord{}, err
			}
			rec.Key = v
			haveKey = true
		case "name":
			rec.Name = a.Value
		case "type":
			v, err := parseInt("account", a)
			if err != nil {
				return AccountRecord{}, err
			}
			rec.Type = v
		case "curr":
			v, err := parseInt("account", a)
			if err != nil {
				return AccountRecord{}, err
			}
			rec.Currency = v
		case "grp":
			v, err := parseInt("account", a)
			if err != nil {
				return AccountRecord{}, err
			}
			rec.Group = v
		case "initial":
			v, err := parseDecimal("account", a)
			if err != nil {
				return AccountRecord{}, err
			}
			rec.Initial = v
		}
	}
	if !haveKey {
		return AccountRecord{}, &DecodeError{Element: "account", Attr: "key", Err: errMissingAttr}
	}
	return rec, nil
}

func parsePayee(attrs []xml.Attr) (PayeeRecord, error) {
	var rec PayeeRecord
	haveKey := false
	for _, a := range attrs {
		switch a.Name.Local {
		case "key":
			v, err := parseInt("pay", a)
			if err != nil {
				return PayeeRecord{}, err
			}
			rec.Key = v
			haveKey = true
		case "name":
			rec.Name = a.Value
		}
	}
	if !haveKey {
		return PayeeRecord{}, &DecodeError{Element: "pay", Attr: "key", Err: errMissingAttr}
	}
	return rec, nil
}

func parseCategory(attrs []xml.Attr) (CategoryRecord, error) {
	var rec CategoryRecord
	haveKey := false
	for _, a := range attrs {
		switch name := a.Name.Local; name {
		case "key":
			v, err := parseInt("cat", a)
			if err != nil {
				return CategoryRecord{}, err
			}
			rec.Key = v
			haveKey = true
		case "name":
			rec.Name = a.Value
		case "parent":
			v, err := parseInt("cat", a)
			if err != nil {
				return CategoryRecord{}, err
			}
			rec.Parent = v
		case "flags":
			v, err := parseInt("cat", a)
			if err != nil {
				return CategoryRecord{}, err
			}
			rec.Flags = v
		default:
			if len(name) < 2 || name[0] != 'b' {
				continue
			}
			month, err := strconv.Atoi(name[1:])
			if err != nil || month < 0 || month > 12 {
				continue
			}
			amount, err := parseDecimal("cat", a)
			if err != nil {
				return CategoryRecord{}, err
			}
			if rec.Budget == nil {
				rec.Budget = make(map[int]decimal.Decimal)
			}
			rec.Budget[month] = amount
		}
	}
	if !haveKey {
		return CategoryRecord{}, &DecodeError{Element: "cat", Attr: "key", Err: errMissingAttr}
	}
	return rec, nil
}

func parseTransaction(attrs []xml.Attr) (TransactionRecord, error) {
	var rec TransactionRecord
	var haveDate, haveAmount, haveAccount bool
	for _, a := range attrs {
		switch a.Name.Local {
		case "date":
			v, err := parseInt("ope", a)
			if err != nil {
				return TransactionRecord{}, err
			}
			rec.Date = julianDate(v)
			haveDate = true
		case "amount":
			v, err := parseDecimal("ope", a)
			if err != nil {
				return TransactionRecord{}, err
			}
			rec.Amount = v
			haveAmount = true
		case "account":
			v, err := parseInt("ope", a)
			if err != nil {
				return TransactionRecord{}, err
			}
			rec.Account = v
			haveAccount = true
		case "paymode":
			v, err := parseInt("ope", a)
			if err != nil {
				return TransactionRecord{}, err
			}
			rec.Paymode = v
		case "st":
			v, err := parseInt("ope", a)
			if err != nil {
				return TransactionRecord{}, err
			}
			rec.Status = v
		case "flags":
			v, err := parseInt("ope", a)
			if err != nil {
				return TransactionRecord{}, err
			}
			rec.Flags = v
		case "payee":
			v, err := parseInt("ope", a)
			if err != nil {
				return TransactionRecord{}, err
			}
			rec.Payee = v
		case "category":
			v, err := parseInt("ope", a)
			if err != nil {
				return TransactionRecord{}, err
			}
			rec.Category = v
		case "wording":
			rec.Memo = a.Value
		case "info":
			rec.Info = a.Value
		case "tags":
			rec.Tags = strings.Fields(a.Value)
		case "scat":
			cats, err := parseSplitCategories(a)
			if err != nil {
				return TransactionRecord{}, err
			}
			rec.SplitCategories = cats
		case "samt":
			amounts, err := parseSplitAmounts(a)
			if err != nil {
				return TransactionRecord{}, err
			}
			rec.SplitAmounts = amounts
		case "smem":
			rec.SplitMemos = strings.Split(a.Value, splitSeparator)
		}
	}
	switch {
	case !haveDate:
		return TransactionRecord{}, &DecodeError{Element: "ope", Attr: "date", Err: errMissingAttr}
	case !haveAmount:
		return TransactionRecord{}, &DecodeError{Element: "ope", Attr: "amount", Err: errMissingAttr}
	case !haveAccount:
		return TransactionRecord{}, &DecodeError{Element: "ope", Attr: "account", Err: errMissingAttr}
	}
	if len(rec.SplitCategories) != len(rec.SplitAmounts) {
		return TransactionRecord{}, &DecodeError{
			Element: "ope",
			Attr:    "scat",
			Err:     fmt.Errorf("split lists disagree: %d categories, %d amounts", len(rec.SplitCategories), len(rec.SplitAmounts)),
		}
	}
	return rec, nil
}

// splitSeparator divides the parallel scat/samt/smem lists of a split
// transaction.
const splitSeparator = "||"

func parseSplitCategories(a xml.Attr) ([]int, error) {
	parts := strings.Split(a.Value, splitSeparator)
	cats := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, &DecodeError{Element: "ope", Attr: a.Name.Local, Value: a.Value, Err: err}
		}
		cats[i] = v
	}
	return cats, nil
}

func parseSplitAmounts(a xml.Attr) ([]decimal.Decimal, error) {
	parts := strings.Split(a.Value, splitSeparator)
	amounts := make([]decimal.Decimal, len(parts))
	for i, p := range parts {
		v, err := decimal.NewFromString(p)
		if err != nil {
			return nil, &DecodeError{Element: "ope", Attr: a.Name.Local, Value: a.Value, Err: err}
		}
		amounts[i] = v
	}
	return amounts, nil
}

func parseInt(element string, a xml.Attr) (int, error) {
	v, err := strconv.Atoi(a.Value)
	if err != nil {
		return 0, &DecodeError{Element: element, Attr: a.Name.Local, Value: a.Value, Err: err}
	}
	return v, nil
}

func parseDecimal(element string, a xml.Attr) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(a.Value)
	if err != nil {
		return decimal.Decimal{}, &DecodeError{Element: element, Attr: a.Name.Local, Value: a.Value, Err: err}
	}
	return v, nil
}
