// internal/page/field.go
package page

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	json "github.com/json-iterator/go"
)

// Kind is the closed set of control types the page knows how to drive.
type Kind int

const (
	KindGeneric Kind = iota
	KindText
	KindTextArea
	KindRadio
	KindFile
	KindModal
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindTextArea:
		return "textarea"
	case KindRadio:
		return "radio"
	case KindFile:
		return "file"
	case KindModal:
		return "modal"
	default:
		return "generic"
	}
}

// Verb names an action performed on a located field.
type Verb string

const (
	VerbWrite         Verb = "write"
	VerbActivate      Verb = "activate"
	VerbForceActivate Verb = "force-activate"
	VerbAttach        Verb = "attach"
)

// capabilities lists the verbs each kind accepts. Modals are only ever awaited.
var capabilities = map[Kind][]Verb{
	KindText:     {VerbWrite},
	KindTextArea: {VerbWrite},
	KindRadio:    {VerbActivate, VerbForceActivate},
	KindFile:     {VerbAttach},
	KindModal:    nil,
	KindGeneric:  {VerbWrite, VerbActivate, VerbForceActivate},
}

// Supports reports whether fields of kind k accept verb v.
func (k Kind) Supports(v Verb) bool {
	for _, c := range capabilities[k] {
		if c == v {
			return true
		}
	}
	return false
}

// Strategy selects how a Locator value is interpreted.
type Strategy int

const (
	StrategyID Strategy = iota
	StrategyCSS
	StrategyXPath
)

// Locator is a selector bound to one logical control. It is resolved against the live document on
// every use; element handles are never cached.
type Locator struct {
	Strategy Strategy
	Value    string
}

func ByID(id string) Locator { return Locator{Strategy: StrategyID, Value: id} }
func ByCSS(sel string) Locator { return Locator{Strategy: StrategyCSS, Value: sel} }
func ByXPath(expr string) Locator { return Locator{Strategy: StrategyXPath, Value: expr} }

func (l Locator) String() string {
	switch l.Strategy {
	case StrategyID:
		return "#" + l.Value
	case StrategyXPath:
		return "xpath=" + l.Value
	default:
		return l.Value
	}
}

// selector returns the chromedp selector and query option for l.
func (l Locator) selector() (string, chromedp.QueryOption) {
	switch l.Strategy {
	case StrategyID:
		return "#" + l.Value, chromedp.ByQuery
	case StrategyXPath:
		return l.Value, chromedp.BySearch
	default:
		return l.Value, chromedp.ByQuery
	}
}

// resolveJS returns a JavaScript expression evaluating to the element or null.
func (l Locator) resolveJS() string {
	lit, _ := json.MarshalToString(l.Value)
	switch l.Strategy {
	case StrategyID:
		return fmt.Sprintf("document.getElementById(%s)", lit)
	case StrategyXPath:
		return fmt.Sprintf("document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue", lit)
	default:
		return fmt.Sprintf("document.querySelector(%s)", lit)
	}
}

// FieldID names a logical control on the form.
type FieldID string

const (
	FirstName    FieldID = "first_name"
	LastName     FieldID = "last_name"
	Email        FieldID = "email"
	Mobile       FieldID = "mobile"
	Gender       FieldID = "gender"
	Picture      FieldID = "picture"
	Address      FieldID = "address"
	Submit       FieldID = "submit"
	SuccessModal FieldID = "success_modal"
)

// Field couples a logical id with its kind and locator.
type Field struct {
	ID      FieldID
	Kind    Kind
	Locator Locator
}

// Fields of the registration form.
var formFields = map[FieldID]Field{
	FirstName:    {FirstName, KindText, ByID("firstName")},
	LastName:     {LastName, KindText, ByID("lastName")},
	Email:        {Email, KindText, ByID("userEmail")},
	Mobile:       {Mobile, KindText, ByID("userNumber")},
	Gender:       {Gender, KindRadio, genderLocator(Male)},
	Picture:      {Picture, KindFile, ByID("uploadPicture")},
	Address:      {Address, KindTextArea, ByID("currentAddress")},
	Submit:       {Submit, KindGeneric, ByID("submit")},
	SuccessModal: {SuccessModal, KindModal, ByID("example-modal-sizes-title-lg")},
}

// readyField is the control whose visibility marks the form as loaded.
const readyField = FirstName

// LookupField returns the form's field registered under id.
func LookupField(id FieldID) (Field, bool) {
	f, ok := formFields[id]
	return f, ok
}

// action builds the chromedp action performing v on f. arg is the text or file path for
// VerbWrite and VerbAttach.
func (f Field) action(v Verb, arg string) (chromedp.Action, error) {
	if !f.Kind.Supports(v) {
		return nil, fmt.Errorf("%w: %s on %s field", ErrUnsupportedAction, v, f.Kind)
	}
	sel, by := f.Locator.selector()
	switch v {
	case VerbWrite:
		return chromedp.SendKeys(sel, arg, by), nil
	case VerbActivate:
		return chromedp.Click(sel, by), nil
	case VerbAttach:
		// Hidden inputs are ready but never visible, so only wait for the node.
		return chromedp.SetUploadFiles(sel, []string{arg}, by, chromedp.NodeReady), nil
	case VerbForceActivate:
		return forceClick(sel, by), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedAction, v)
}

const forceClickJS = `function() { this.scrollIntoView(true); this.click(); return true; }`

// forceActivation scrolls the node into view and clicks it from script, so overlays and
// off-screen positions cannot swallow the activation.
type forceActivation struct {
	sel string
	by  chromedp.QueryOption
}

func forceClick(sel string, by chromedp.QueryOption) chromedp.Action {
	return &forceActivation{sel: sel, by: by}
}

func (a *forceActivation) Do(ctx context.Context) error {
	return chromedp.QueryAfter(a.sel, func(ctx context.Context, _ runtime.ExecutionContextID, nodes ...*cdp.Node) error {
		if len(nodes) < 1 {
			return fmt.Errorf("selector %q did not return any nodes", a.sel)
		}
		obj, err := dom.ResolveNode().WithBackendNodeID(nodes[0].BackendNodeID).Do(ctx)
		if err != nil {
			return fmt.Errorf("resolve %q: %w", a.sel, err)
		}
		defer func() { _ = runtime.ReleaseObject(obj.ObjectID).Do(ctx) }()

		_, exp, err := runtime.CallFunctionOn(forceClickJS).WithObjectID(obj.ObjectID).Do(ctx)
		if err != nil {
			return err
		}
		if exp != nil {
			return exp
		}
		return nil
	}, a.by, chromedp.NodeReady).Do(ctx)
}

// await builds the wait for f under readiness r.
func (f Field) await(r Readiness) chromedp.Action {
	sel, by := f.Locator.selector()
	if r == Present {
		return chromedp.WaitReady(sel, by)
	}
	return chromedp.WaitVisible(sel, by)
}
