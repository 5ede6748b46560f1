/*
The reducer has the purpose to filter out all concepts of a vocabulary which have 0 chance to be involved in the expression of a concept set.
Only the concepts of the set and their descendants can appear in a minimal expression, which keeps the search tree of the condenser small.
*/
package reducer
