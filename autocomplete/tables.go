package autocomplete

// Static suggestion tables for DQL. The resolver unions these with schema
// field names depending on the detected context.

// functionNames are DQL filter and root functions.
var functionNames = []string{
	"eq",
	"le",
	"lt",
	"ge",
	"gt",
	"has",
	"uid",
	"uid_in",
	"type",
	"allofterms",
	"anyofterms",
	"alloftext",
	"anyoftext",
	"regexp",
	"match",
	"between",
	"near",
	"within",
	"contains",
	"intersects",
	"val",
	"count",
}

// directiveNames are DQL query and schema directives.
var directiveNames = []string{
	"@filter",
	"@facets",
	"@cascade",
	"@normalize",
	"@groupby",
	"@recurse",
	"@ignorereflex",
	"@index",
	"@reverse",
	"@count",
	"@upsert",
	"@lang",
}

// scalarTypeNames are the schema scalar types offered after "type ".
var scalarTypeNames = []string{
	"string",
	"int",
	"float",
	"bool",
	"datetime",
	"geo",
	"password",
	"uid",
	"default",
}

// keywordNames are query-level keywords offered in predicate position.
var keywordNames = []string{
	"func",
	"filter",
	"orderasc",
	"orderdesc",
	"first",
	"offset",
	"after",
	"count",
	"uid",
	"expand",
}
