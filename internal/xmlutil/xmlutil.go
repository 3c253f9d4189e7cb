// Package xmlutil models the persisted dictionary format as a generic
// element tree: named elements carrying attributes, ordered child
// elements, and optional text content (used by the contract markup).
package xmlutil

import (
	"encoding/xml"
	"io"
	"os"
	"strings"
)

type Node struct {
	Name     string
	Attrs    []xml.Attr
	Text     string
	Children []*Node
}

func NewNode(name string) *Node {
	return &Node{Name: name}
}

func (n *Node) Get(attr string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == attr {
			return a.Value, true
		}
	}
	return "", false
}

func (n *Node) Set(attr, value string) {
	for i, a := range n.Attrs {
		if a.Name.Local == attr {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, xml.Attr{Name: xml.Name{Local: attr}, Value: value})
}

// Find returns the first child element with the given name, or nil.
func (n *Node) Find(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (n *Node) FindAll(name string) []*Node {
	found := []*Node{}
	for _, c := range n.Children {
		if c.Name == name {
			found = append(found, c)
		}
	}
	return found
}

func (n *Node) Append(children ...*Node) {
	n.Children = append(n.Children, children...)
}

func (n *Node) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: n.Name}, Attr: n.Attrs}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if n.Text != "" {
		if err := e.EncodeToken(xml.CharData(n.Text)); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := c.MarshalXML(e, start); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

func (n *Node) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	n.Name = start.Name.Local
	n.Attrs = start.Attr
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			child := &Node{}
			if err := child.UnmarshalXML(d, tok); err != nil {
				return err
			}
			n.Children = append(n.Children, child)
		case xml.CharData:
			n.Text += strings.TrimSpace(string(tok))
		case xml.EndElement:
			return nil
		}
	}
}

func Write(w io.Writer, root *Node) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(root); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func Parse(r io.Reader) (*Node, error) {
	root := &Node{}
	if err := xml.NewDecoder(r).Decode(root); err != nil {
		return nil, err
	}
	return root, nil
}

func ParseFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

func WriteFile(path string, root *Node) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Write(f, root)
}
