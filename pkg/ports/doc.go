/*
Package ports defines the driven ports (interfaces) for the Lattice engine.

These interfaces decouple the canonical tree from the concrete board formats and
from wherever translation tables are kept.

# Key Interfaces

  - Converter: the four-operation contract every board format implements.
  - SymbolResolver: resolves built-in symbol library tokens (e.g. "[widgit]cat.wmf").
  - TranslationStore: loads and saves translation tables per language.

The package also ships contract suites (RunConverterContract,
RunTranslationStoreContract) that every implementation runs from its own tests.
*/
package ports
