// Package enum selects the underlying integer type of a C enum from its
// enumerator range and packed attribute, and derives what that choice means
// for byte copies and right shifts of enum objects.
//
// Two candidate policies are available. PolicyPreferSigned walks int,
// unsigned int, long, unsigned long, long long, unsigned long long (the
// packed table starts at signed char) and picks the first type that holds
// the range. PolicyGCC uses the same widths but only unsigned candidates
// when no enumerator is negative, and only signed candidates otherwise.
package enum
