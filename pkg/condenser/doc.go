/*
Package condenser finds the shortest concept set expression which resolves to
exactly a given set of concepts.

A candidate analysis first decides which clause kinds are worth trying for
each concept and drops concepts that are always covered by the blanket clause
of an ancestor. The remaining candidates are ordered and explored depth first,
pruning branches that are already too long or that can no longer add the
missing concepts, or remove the surplus ones.
*/
package condenser
