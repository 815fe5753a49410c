// Package catalog maps remote collection names to their download format
// pair, category and description. The harvester depends only on this lookup,
// never on category identity.
package catalog

import (
	"sort"
	"strings"

	"entrezharvest/pkg/extract"
)

// Category groups collections by the kind of data they hold
type Category string

const (
	CategorySequence   Category = "sequence"
	CategoryLiterature Category = "literature"
	CategoryGene       Category = "gene"
	CategoryProject    Category = "project"
	CategoryVariation  Category = "variation"
	CategoryChemical   Category = "chemical"
	CategoryExpression Category = "expression"
	CategoryStructure  Category = "structure"
)

// FormatPair is the (rettype, retmode) pair passed to the remote fetch call
type FormatPair struct {
	RetType string
	RetMode string
}

// Kind returns the segmentation format implied by the pair
func (f FormatPair) Kind() extract.Format {
	switch {
	case f.RetType == "gb":
		return extract.FormatFlatfile
	case f.RetMode == "xml":
		return extract.FormatXML
	default:
		return extract.FormatDelimited
	}
}

// FileExtension returns the extension for persisted record files
func (f FormatPair) FileExtension() string {
	switch {
	case f.RetType == "gb":
		return "gbk"
	case f.RetMode == "xml":
		return "xml"
	case f.RetMode == "csv":
		return "csv"
	default:
		return "txt"
	}
}

// Entry describes one collection
type Entry struct {
	Format      FormatPair
	Category    Category
	Description string
}

// DefaultFormat is used for collections without a catalog entry
var DefaultFormat = FormatPair{RetType: "xml", RetMode: "xml"}

var flatfile = FormatPair{RetType: "gb", RetMode: "text"}
var xml = FormatPair{RetType: "xml", RetMode: "xml"}
var runinfo = FormatPair{RetType: "runinfo", RetMode: "text"}

var entries = map[string]Entry{
	// Sequence collections use the GenBank flatfile format for full annotations
	"protein":    {flatfile, CategorySequence, "Protein sequences and annotations"},
	"nucleotide": {flatfile, CategorySequence, "DNA and RNA sequences"},
	"nuccore":    {flatfile, CategorySequence, "Core nucleotide sequence collection"},
	"nucest":     {flatfile, CategorySequence, "Expressed sequence tags"},
	"nucgss":     {flatfile, CategorySequence, "Genome survey sequences"},
	"genome":     {flatfile, CategorySequence, "Complete genome sequences"},
	"popset":     {flatfile, CategorySequence, "Population genetics sequence sets"},

	// Literature collections use XML for full bibliographic information
	"pubmed": {xml, CategoryLiterature, "Biomedical literature citations and abstracts"},
	"pmc":    {xml, CategoryLiterature, "Full-text articles from PubMed Central"},
	"books":  {xml, CategoryLiterature, "Books and chapters"},

	"gene":            {xml, CategoryGene, "Gene records and annotations"},
	"homologene":      {xml, CategoryGene, "Homologous genes across species"},
	"cdd":             {xml, CategoryGene, "Conserved protein domains"},
	"proteinclusters": {xml, CategoryGene, "Clusters of related proteins"},

	"bioproject": {xml, CategoryProject, "Research project descriptions"},
	"biosample":  {xml, CategoryProject, "Biological sample metadata"},
	"sra":        {runinfo, CategoryProject, "Sequence read archive run metadata"},
	"assembly":   {xml, CategoryProject, "Genome assembly information"},

	"snp":     {xml, CategoryVariation, "Single nucleotide polymorphisms"},
	"dbvar":   {xml, CategoryVariation, "Large structural variations"},
	"clinvar": {xml, CategoryVariation, "Clinically relevant variants"},
	"gap":     {xml, CategoryVariation, "Genotype and phenotype associations"},

	"pcassay":     {xml, CategoryChemical, "Bioactivity assays"},
	"pccompound":  {xml, CategoryChemical, "Chemical compounds"},
	"pcsubstance": {xml, CategoryChemical, "Chemical substances"},

	"gds":     {xml, CategoryExpression, "Gene expression datasets"},
	"geo":     {xml, CategoryExpression, "Gene expression omnibus profiles"},
	"unigene": {xml, CategoryExpression, "Transcript sequence clusters"},
	"probe":   {xml, CategoryExpression, "Microarray probe information"},

	"structure": {xml, CategoryStructure, "Macromolecular 3D structures"},
	"taxonomy":  {xml, CategoryStructure, "Organism classification"},
	"mesh":      {xml, CategoryStructure, "Medical subject headings"},
	"omim":      {xml, CategoryStructure, "Mendelian inheritance in man"},
}

// Lookup returns the catalog entry for a collection name. Unknown
// collections get the default XML format and no category.
func Lookup(collection string) (Entry, bool) {
	entry, ok := entries[strings.ToLower(collection)]
	if !ok {
		return Entry{Format: DefaultFormat}, false
	}
	return entry, true
}

// Format returns the download format pair for a collection
func Format(collection string) FormatPair {
	entry, _ := Lookup(collection)
	return entry.Format
}

// IsSupported reports whether the collection has a catalog entry
func IsSupported(collection string) bool {
	_, ok := entries[strings.ToLower(collection)]
	return ok
}

// Collections returns all catalog collection names, sorted
func Collections() []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CollectionsByCategory returns the collection names in a category, sorted
func CollectionsByCategory(category Category) []string {
	var names []string
	for name, entry := range entries {
		if entry.Category == category {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Categories returns all known categories in a stable order
func Categories() []Category {
	return []Category{
		CategorySequence,
		CategoryLiterature,
		CategoryGene,
		CategoryProject,
		CategoryVariation,
		CategoryChemical,
		CategoryExpression,
		CategoryStructure,
	}
}
